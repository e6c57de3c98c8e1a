package folderapi

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// createRequest is the payload for POST /.
type createRequest struct {
	Path string `json:"path" validate:"required"`
}

// renameRequest is the payload for PUT /rename.
type renameRequest struct {
	OldPath string `json:"old_path" validate:"required"`
	NewPath string `json:"new_path" validate:"required"`
}

// shareRequest is the payload for POST /share.
type shareRequest struct {
	Path        string   `json:"path" validate:"required"`
	ReadEmails  []string `json:"read_emails" validate:"omitempty,dive,email"`
	WriteEmails []string `json:"write_emails" validate:"omitempty,dive,email"`
}
