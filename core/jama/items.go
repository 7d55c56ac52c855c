package jama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"reqsync/core/reconcile"
)

// apiItem is the wire shape of one item.
type apiItem struct {
	ID       int            `json:"id"`
	ItemType int            `json:"itemType"`
	Fields   map[string]any `json:"fields"`
	Location struct {
		Sequence string `json:"sequence"`
		Parent   struct {
			Item int `json:"item"`
		} `json:"parent"`
	} `json:"location"`
}

type pageInfo struct {
	TotalResults int `json:"totalResults"`
	ResultCount  int `json:"resultCount"`
}

// GetProject fetches the project and returns its display name. It
// doubles as the connectivity pre-check before a fetch run.
func (c *Client) GetProject(ctx context.Context) (string, error) {
	var resp struct {
		Data struct {
			Fields map[string]any `json:"fields"`
		} `json:"data"`
	}
	path := "/rest/v1/projects/" + strconv.Itoa(c.cfg.ProjectID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return "", err
	}
	name, _ := resp.Data.Fields["name"].(string)
	return name, nil
}

// ListItems implements reconcile.ItemSource: one page of the project's
// items in the store's native tree order.
func (c *Client) ListItems(ctx context.Context, startAt, maxResults int) ([]reconcile.Item, int, error) {
	query := url.Values{
		"project":    {strconv.Itoa(c.cfg.ProjectID)},
		"startAt":    {strconv.Itoa(startAt)},
		"maxResults": {strconv.Itoa(maxResults)},
	}

	var resp struct {
		Data []apiItem `json:"data"`
		Meta struct {
			PageInfo pageInfo `json:"pageInfo"`
		} `json:"meta"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/rest/v1/items", query, nil, &resp); err != nil {
		return nil, 0, err
	}

	items := make([]reconcile.Item, 0, len(resp.Data))
	for _, raw := range resp.Data {
		items = append(items, c.toItem(raw))
	}
	return items, resp.Meta.PageInfo.TotalResults, nil
}

// CreateItem implements reconcile.Transport. Items without a parent are
// created at the project root.
func (c *Client) CreateItem(ctx context.Context, item reconcile.Item) (int, error) {
	itemType := item.ItemTypeID
	if itemType == 0 {
		itemType = c.cfg.DefaultItemType
	}

	parent := map[string]any{"project": c.cfg.ProjectID}
	if item.ParentID != 0 {
		parent["item"] = item.ParentID
	}

	payload := map[string]any{
		"project":       c.cfg.ProjectID,
		"itemType":      itemType,
		"childItemType": itemType,
		"location":      map[string]any{"parent": parent},
		"fields":        item.Fields,
	}

	var resp struct {
		ID int `json:"id"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/rest/v1/items", nil, payload, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// UpdateItem implements reconcile.Transport. Only the changed fields
// are sent; the store keeps the rest.
func (c *Client) UpdateItem(ctx context.Context, id int, fields map[string]string) error {
	payload := map[string]any{"fields": fields}
	return c.doRequest(ctx, http.MethodPut, "/rest/v1/items/"+strconv.Itoa(id), nil, payload, nil)
}

// DeleteItem implements reconcile.Transport. A 404 surfaces as an error
// matching errs.ErrNotFound so the writer can treat it as already done.
func (c *Client) DeleteItem(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, "/rest/v1/items/"+strconv.Itoa(id), nil, nil, nil)
}

// toItem converts a wire item into the engine's model, canonicalizing
// field names once at ingestion.
func (c *Client) toItem(raw apiItem) reconcile.Item {
	if c.cfg.Debug {
		c.log.Debug("raw item", zap.Int("id", raw.ID), zap.Any("fields", raw.Fields))
	}

	stringFields := make(map[string]string, len(raw.Fields))
	for key, value := range raw.Fields {
		stringFields[key] = fieldString(value)
	}
	fields, unrecognized := reconcile.CanonicalizeFields(stringFields)
	if len(unrecognized) > 0 {
		// Remote items routinely carry project-specific extras; debug
		// level keeps large fetches readable.
		c.log.Debug("unrecognized item fields ignored",
			zap.Int("id", raw.ID),
			zap.Strings("fields", unrecognized))
	}

	return reconcile.Item{
		ID:         raw.ID,
		ItemTypeID: raw.ItemType,
		Name:       fields[reconcile.FieldName],
		Sequence:   raw.Location.Sequence,
		ParentID:   raw.Location.Parent.Item,
		Fields:     fields,
	}
}

// fieldString renders a wire field value as a cell value. Numbers lose
// their JSON float form.
func fieldString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
