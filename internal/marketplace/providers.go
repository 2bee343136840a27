package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/presta-matcher/internal/directory"
	"go.uber.org/zap"
)

const (
	UsersPath = "/users"
)

// QueryParams are sent with every roster request.
type QueryParams struct {
	Role    string `mpparam:"role"`
	PerPage string `mpparam:"per_page"`
	// Fields lists the profile fields to return; empty means all.
	Fields []string `mpparam:"fields"`
}

var _ directory.Directory = (*Client)(nil)

// ListProviders fetches every prestataire account from the marketplace.
func (c *Client) ListProviders(ctx context.Context) ([]directory.Provider, error) {
	params := &QueryParams{Role: directory.RoleProvider, PerPage: perPage}

	items, err := c.GetItems(ctx, c.APIURL+UsersPath, buildParams(params))
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	var decoded []directory.Provider
	cfg := &mapstructure.DecoderConfig{
		Result:           &decoded,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	providers := make([]directory.Provider, 0, len(decoded))
	for _, p := range decoded {
		if directory.IsProvider(p.Role) {
			providers = append(providers, p)
		}
	}

	c.logger.Debug("marketplace roster loaded",
		zap.Int("users", len(decoded)),
		zap.Int("providers", len(providers)),
	)

	return providers, nil
}

func buildParams(params *QueryParams) url.Values {
	q := url.Values{}
	v := reflect.ValueOf(params).Elem()
	for _, field := range reflect.VisibleFields(v.Type()) {
		key := field.Tag.Get("mpparam")
		if key == "" {
			continue
		}

		value := v.FieldByIndex(field.Index)
		switch value.Kind() {
		case reflect.Slice:
			for i := 0; i < value.Len(); i++ {
				q.Add(key, fmt.Sprintf("%v", value.Index(i).Interface()))
			}
		case reflect.Int, reflect.Int64:
			if n := value.Int(); n != 0 {
				q.Set(key, strconv.FormatInt(n, 10))
			}
		default:
			if s := fmt.Sprintf("%v", value.Interface()); s != "" {
				q.Set(key, s)
			}
		}
	}

	return q
}
