package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MKhiriev/field-crm/internal/config"
	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
	"github.com/go-resty/resty/v2"
)

const idempotencyKeyHeader = "Idempotency-Key"

type httpServerAdapter struct {
	client *utils.HTTPClient

	healthPath string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the resolved base URL, request
// timeout and, when appCfg.APIToken is set, the bearer token.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout)
	if token := strings.TrimSpace(appCfg.APIToken); token != "" {
		client.SetAuthToken(token)
	}

	logger.Info().Str("base_url", baseURL).Msg("remote api adapter created")
	return &httpServerAdapter{client: client, healthPath: adapterCfg.HealthPath, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpServerAdapter) request(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if key, ok := utils.GetIdempotencyKeyFromContext(ctx); ok {
		req.SetHeader(idempotencyKeyHeader, key)
	}
	return req
}

func lookup(collection string) (models.CollectionDescriptor, error) {
	desc, ok := models.LookupCollection(collection)
	if !ok {
		return models.CollectionDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return desc, nil
}

func recordPath(collection string, id int64) string {
	return "/" + collection + "/" + strconv.FormatInt(id, 10)
}

// List implements [ServerAdapter]. It sends GET /{collection}.
func (h *httpServerAdapter) List(ctx context.Context, collection string) ([]models.Record, error) {
	desc, err := lookup(collection)
	if err != nil {
		return nil, err
	}

	resp, err := h.request(ctx).Get("/" + collection)
	if err != nil {
		return nil, mapTransportError("list "+collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	records, err := decodeList(desc, resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode %s list: %w", collection, err)
	}

	logger.FromContext(ctx).Debug().
		Str("func", "httpServerAdapter.List").
		Str("collection", collection).
		Int("records", len(records)).
		Msg("collection fetched")

	return records, nil
}

// Get implements [ServerAdapter]. It sends GET /{collection}/{id}.
func (h *httpServerAdapter) Get(ctx context.Context, collection string, id int64) (models.Record, error) {
	desc, err := lookup(collection)
	if err != nil {
		return models.Record{}, err
	}

	resp, err := h.request(ctx).Get(recordPath(collection, id))
	if err != nil {
		return models.Record{}, mapTransportError("get "+collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	return decodeEntity(desc, resp.Body())
}

// Create implements [ServerAdapter]. It sends POST /{collection}.
func (h *httpServerAdapter) Create(ctx context.Context, collection string, payload json.RawMessage) (models.Record, error) {
	desc, err := lookup(collection)
	if err != nil {
		return models.Record{}, err
	}

	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(payload)).
		Post("/" + collection)
	if err != nil {
		return models.Record{}, mapTransportError("create "+collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	return decodeEntity(desc, resp.Body())
}

// Update implements [ServerAdapter]. It sends PUT /{collection}/{id}.
func (h *httpServerAdapter) Update(ctx context.Context, collection string, id int64, payload json.RawMessage) (models.Record, error) {
	desc, err := lookup(collection)
	if err != nil {
		return models.Record{}, err
	}

	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(payload)).
		Put(recordPath(collection, id))
	if err != nil {
		return models.Record{}, mapTransportError("update "+collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	if len(bytes.TrimSpace(resp.Body())) == 0 {
		return models.RecordFromPayload(collection, id, payload)
	}
	return decodeEntity(desc, resp.Body())
}

// Delete implements [ServerAdapter]. It sends DELETE /{collection}/{id}.
func (h *httpServerAdapter) Delete(ctx context.Context, collection string, id int64) error {
	if _, err := lookup(collection); err != nil {
		return err
	}

	resp, err := h.request(ctx).Delete(recordPath(collection, id))
	if err != nil {
		return mapTransportError("delete "+collection, err)
	}

	return mapHTTPError(resp)
}

// UploadPhoto implements [ServerAdapter]. The image goes in the "photo" part
// and the caption in the "caption" field.
func (h *httpServerAdapter) UploadPhoto(ctx context.Context, visitID int64, photo models.Photo) (models.Record, error) {
	desc, err := lookup(models.CollectionPhotos)
	if err != nil {
		return models.Record{}, err
	}

	fileName := photo.FileName
	if fileName == "" {
		fileName = "photo.jpg"
	}

	resp, err := h.request(ctx).
		SetFileReader("photo", fileName, bytes.NewReader(photo.Data)).
		SetFormData(map[string]string{"caption": photo.Caption}).
		Post(recordPath(models.CollectionVisits, visitID) + "/photos")
	if err != nil {
		return models.Record{}, mapTransportError("upload photo", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Record{}, err
	}

	return decodeEntity(desc, resp.Body())
}

// Ping implements [ServerAdapter]. Any answer except a gateway error counts
// as reachable: a 404 from a server without a health route still proves the
// API is up.
func (h *httpServerAdapter) Ping(ctx context.Context) error {
	if strings.TrimSpace(h.healthPath) == "" {
		return ErrSourceUnavailable
	}

	resp, err := h.client.R().SetContext(ctx).Get(h.healthPath)
	if err != nil {
		return mapTransportError("ping", err)
	}
	if isGatewayStatus(resp.StatusCode()) {
		return mapHTTPError(resp)
	}

	return nil
}
