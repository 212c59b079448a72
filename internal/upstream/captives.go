package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

// ListByStatus fetches records for one section. The archive alias is
// passed through pipe-joined, which the upstream splits server-side.
func (c *Client) ListByStatus(ctx context.Context, session *models.Session, status string) ([]models.Captive, error) {
	path := "/captives/"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var captives []models.Captive
	if err := c.getJSON(ctx, session, path, &captives); err != nil {
		return nil, err
	}
	return c.dropInvalid(captives), nil
}

// ListByOwner fetches the records owned by one account.
func (c *Client) ListByOwner(ctx context.Context, session *models.Session, ownerID int64) ([]models.Captive, error) {
	var captives []models.Captive
	path := fmt.Sprintf("/captives/?user_id=%d", ownerID)
	if err := c.getJSON(ctx, session, path, &captives); err != nil {
		return nil, err
	}
	return c.dropInvalid(captives), nil
}

// GetByID fetches a single record.
func (c *Client) GetByID(ctx context.Context, session *models.Session, id int64) (*models.Captive, error) {
	var captive models.Captive
	if err := c.getJSON(ctx, session, fmt.Sprintf("/captives/%d/", id), &captive); err != nil {
		return nil, err
	}
	if err := checkRecord(&captive); err != nil {
		return nil, err
	}
	return &captive, nil
}

// Create submits a new record as multipart form data, streaming the
// picture part when one was uploaded.
func (c *Client) Create(ctx context.Context, session *models.Session, form *dto.CaptiveForm) (*models.Captive, error) {
	body, contentType, err := encodeForm(form)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, session, http.MethodPost, "/captives/", body, contentType)
	if err != nil {
		return nil, err
	}
	raw, _, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var captive models.Captive
	if err := decode(raw, &captive); err != nil {
		return nil, err
	}
	if err := checkRecord(&captive); err != nil {
		return nil, err
	}
	return &captive, nil
}

// Update patches an existing record. Only the fields present in the form
// are sent, matching the upstream's partial-update semantics.
func (c *Client) Update(ctx context.Context, session *models.Session, id int64, form *dto.CaptiveForm) (*models.Captive, error) {
	body, contentType, err := encodeForm(form)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, session, http.MethodPatch, fmt.Sprintf("/captives/%d/", id), body, contentType)
	if err != nil {
		return nil, err
	}
	raw, _, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var captive models.Captive
	if err := decode(raw, &captive); err != nil {
		return nil, err
	}
	if err := checkRecord(&captive); err != nil {
		return nil, err
	}
	return &captive, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, session *models.Session, id int64) error {
	req, err := c.newRequest(ctx, session, http.MethodDelete, fmt.Sprintf("/captives/%d/", id), nil, "")
	if err != nil {
		return err
	}
	_, _, err = c.do(req)
	return err
}

// checkRecord rejects a single record whose enum fields fall outside the
// known values; the upstream breaking its own contract surfaces as an
// upstream failure, not as bogus data riding into the services.
func checkRecord(captive *models.Captive) error {
	if err := captive.Validate(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "unexpected upstream record")
	}
	return nil
}

// dropInvalid filters a listing down to the records that parse. One
// malformed record should not take the whole section view down, so list
// calls log and skip instead of failing.
func (c *Client) dropInvalid(captives []models.Captive) []models.Captive {
	valid := captives[:0]
	for i := range captives {
		if err := captives[i].Validate(); err != nil {
			c.logger.Warn("dropping invalid upstream record",
				zap.Int64("id", captives[i].ID),
				zap.Error(err))
			continue
		}
		valid = append(valid, captives[i])
	}
	return valid
}

// encodeForm renders a record form as a multipart body. Empty fields are
// omitted so PATCH calls stay partial.
func encodeForm(form *dto.CaptiveForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":          form.Name,
		"person_type":   form.PersonType,
		"brigade":       form.Brigade,
		"status":        form.Status,
		"region":        form.Region,
		"settlement":    form.Settlement,
		"circumstances": form.Circumstances,
		"appearance":    form.Appearance,
		"date_of_birth": form.DateOfBirth,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode form field")
		}
	}

	if form.Picture != nil {
		part, err := writer.CreateFormFile("picture", form.Picture.Filename)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode picture part")
		}
		if _, err := io.Copy(part, form.Picture.Content); err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "copy picture part")
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finish multipart body")
	}
	return &buf, writer.FormDataContentType(), nil
}
