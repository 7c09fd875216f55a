package shopify

import (
	"context"

	"github.com/tiffinworks/commerce-backend/pkg/config"
	pkgerrors "github.com/tiffinworks/commerce-backend/pkg/errors"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
)

const adminTokenHeader = "X-Shopify-Access-Token"

// AdminClient talks to the admin GraphQL API with its own credential.
type AdminClient struct {
	gql *graphQLClient
}

// NewAdminClient wires the admin endpoint from config.
func NewAdminClient(cfg config.AdminConfig, logg *logger.Logger, opts ...Option) (*AdminClient, error) {
	gql, err := newGraphQLClient(cfg.URL, adminTokenHeader, cfg.AccessToken, logg, opts...)
	if err != nil {
		return nil, err
	}
	return &AdminClient{gql: gql}, nil
}

// StagedUploadParameter is one required form field of a staged upload.
type StagedUploadParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StagedUploadTarget is a single-use upload destination.
type StagedUploadTarget struct {
	URL         string                  `json:"url"`
	ResourceURL string                  `json:"resourceUrl"`
	Parameters  []StagedUploadParameter `json:"parameters"`
}

const stagedUploadsCreateQuery = `mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters {
        name
        value
      }
    }
    userErrors {
      field
      message
    }
  }
}`

// StagedUploadsCreate requests one single-use upload target for the file.
func (c *AdminClient) StagedUploadsCreate(ctx context.Context, filename, mimeType string) (*StagedUploadTarget, error) {
	input := []map[string]any{{
		"resource":   "FILE",
		"filename":   filename,
		"mimeType":   mimeType,
		"httpMethod": "POST",
	}}

	var data struct {
		Result struct {
			StagedTargets []StagedUploadTarget `json:"stagedTargets"`
			UserErrors    []UserError          `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}

	err := c.gql.execute(ctx, "staged_uploads_create", stagedUploadsCreateQuery, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}

	if len(data.Result.UserErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, JoinUserErrors(data.Result.UserErrors)).
			WithDetails(data.Result.UserErrors)
	}
	if len(data.Result.StagedTargets) == 0 || data.Result.StagedTargets[0].URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMissingData, "no staged upload target returned")
	}

	target := data.Result.StagedTargets[0]
	return &target, nil
}

// FileRecord is the registered asset identifier.
type FileRecord struct {
	ID string `json:"id"`
}

const fileCreateQuery = `mutation fileCreate($files: [FileCreateInput!]!) {
  fileCreate(files: $files) {
    files {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

// FileCreate registers a new asset record for an uploaded resource.
// Content-type metadata is attached only here, never on update.
func (c *AdminClient) FileCreate(ctx context.Context, originalSource, contentType string) (*FileRecord, error) {
	file := map[string]any{"originalSource": originalSource}
	if contentType != "" {
		file["contentType"] = contentType
	}

	var data struct {
		Result struct {
			Files      []FileRecord `json:"files"`
			UserErrors []UserError  `json:"userErrors"`
		} `json:"fileCreate"`
	}

	err := c.gql.execute(ctx, "file_create", fileCreateQuery, map[string]any{"files": []map[string]any{file}}, &data)
	if err != nil {
		return nil, err
	}
	return firstFileRecord(data.Result.Files, data.Result.UserErrors)
}

const fileUpdateQuery = `mutation fileUpdate($files: [FileUpdateInput!]!) {
  fileUpdate(files: $files) {
    files {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

// FileUpdate points an existing asset record at a newly uploaded resource.
func (c *AdminClient) FileUpdate(ctx context.Context, id, originalSource string) (*FileRecord, error) {
	file := map[string]any{"id": id, "originalSource": originalSource}

	var data struct {
		Result struct {
			Files      []FileRecord `json:"files"`
			UserErrors []UserError  `json:"userErrors"`
		} `json:"fileUpdate"`
	}

	err := c.gql.execute(ctx, "file_update", fileUpdateQuery, map[string]any{"files": []map[string]any{file}}, &data)
	if err != nil {
		return nil, err
	}
	return firstFileRecord(data.Result.Files, data.Result.UserErrors)
}

func firstFileRecord(files []FileRecord, userErrors []UserError) (*FileRecord, error) {
	if len(userErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, JoinUserErrors(userErrors)).
			WithDetails(userErrors)
	}
	if len(files) == 0 || files[0].ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMissingData, "no file id returned")
	}
	record := files[0]
	return &record, nil
}

// FileStatusNode is the readiness view of one asset record.
type FileStatusNode struct {
	ID         string
	FileStatus string
	PreviewURL string
}

const fileNodesQuery = `query fileNodes($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on File {
      id
      fileStatus
      preview {
        image {
          url
        }
      }
    }
  }
}`

// FileNodes queries readiness status and preview URLs for asset records.
func (c *AdminClient) FileNodes(ctx context.Context, ids []string) ([]FileStatusNode, error) {
	var data struct {
		Nodes []*struct {
			ID         string `json:"id"`
			FileStatus string `json:"fileStatus"`
			Preview    *struct {
				Image *struct {
					URL string `json:"url"`
				} `json:"image"`
			} `json:"preview"`
		} `json:"nodes"`
	}

	err := c.gql.execute(ctx, "file_nodes", fileNodesQuery, map[string]any{"ids": ids}, &data)
	if err != nil {
		return nil, err
	}

	nodes := make([]FileStatusNode, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		if n == nil {
			continue
		}
		node := FileStatusNode{ID: n.ID, FileStatus: n.FileStatus}
		if n.Preview != nil && n.Preview.Image != nil {
			node.PreviewURL = n.Preview.Image.URL
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
