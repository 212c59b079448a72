package upstream

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

// SearchByAppearance runs the upstream relevance search over appearance
// descriptions and returns the ranked result list.
func (c *Client) SearchByAppearance(ctx context.Context, session *models.Session, appearance, status string) ([]models.Captive, error) {
	payload := map[string]string{"appearance": appearance}
	if status != "" {
		payload["status"] = status
	}
	var captives []models.Captive
	if _, err := c.postJSON(ctx, session, "/appearance_search/", payload, &captives); err != nil {
		return nil, err
	}
	return c.dropInvalid(captives), nil
}

// SearchByPhoto submits a photo for the upstream similarity search.
func (c *Client) SearchByPhoto(ctx context.Context, session *models.Session, photo *dto.FileUpload, status string) ([]models.Captive, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("photo", photo.Filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode photo part")
	}
	if _, err := io.Copy(part, photo.Content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "copy photo part")
	}
	if status != "" {
		if err := writer.WriteField("status", status); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode status field")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finish multipart body")
	}

	req, err := c.newRequest(ctx, session, http.MethodPost, "/photo_search/", &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	raw, _, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var captives []models.Captive
	if err := decode(raw, &captives); err != nil {
		return nil, err
	}
	return c.dropInvalid(captives), nil
}
