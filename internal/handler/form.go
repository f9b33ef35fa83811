package handler

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxFormBytes = 1 << 16

// bindForm decodes a url-encoded form into dst. net/http only reads request
// bodies for POST, PUT and PATCH, so a GET carrying a form body is parsed here
// first.
func bindForm(c *gin.Context, dst any) error {
	req := c.Request

	if req.Method == http.MethodGet && req.PostForm == nil && c.ContentType() == binding.MIMEPOSTForm {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxFormBytes))
		if err != nil {
			return err
		}

		values, err := url.ParseQuery(string(body))
		if err != nil {
			return err
		}

		req.PostForm = values
	}

	return c.ShouldBindWith(dst, binding.Form)
}
