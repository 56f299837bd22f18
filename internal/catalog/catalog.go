// Package catalog serves read-mostly location metadata, pipelines and
// tags, through a stale-while-revalidate file cache so repeated CLI
// invocations do not hammer the CRM.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"liv8/ghlm/internal/domain"
	"liv8/ghlm/internal/ghl"
	"liv8/ghlm/internal/vault"
)

// Stage is one stage of an opportunity pipeline.
type Stage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Pipeline is an opportunity pipeline with its ordered stages.
type Pipeline struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Stages []Stage `json:"stages"`
}

// Tag is a location-level contact tag.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TokenSource yields an access token for a location. Implemented by
// vault.Vault.
type TokenSource interface {
	GetToken(ctx context.Context, locationID string) (*vault.Token, error)
}

// Invoker dispatches a tool call. Implemented by ghl.Client.
type Invoker interface {
	Invoke(ctx context.Context, accessToken, locationID string, tool ghl.Tool, input map[string]any) (any, error)
}

// Service answers catalog queries for connected locations.
type Service struct {
	cache   *Cache
	tokens  TokenSource
	invoker Invoker
}

// New returns a catalog service. cache may be nil to bypass caching.
func New(cache *Cache, tokens TokenSource, invoker Invoker) *Service {
	return &Service{cache: cache, tokens: tokens, invoker: invoker}
}

// Pipelines lists the location's opportunity pipelines.
func (s *Service) Pipelines(ctx context.Context, locationID string) ([]Pipeline, error) {
	return getOrFetch(s.cache, ctx, locationID+"_pipelines", func(ctx context.Context) ([]Pipeline, error) {
		raw, err := s.invoke(ctx, locationID, ghl.ToolListPipelines)
		if err != nil {
			return nil, err
		}
		var out []Pipeline
		if err := decodeField(raw, "pipelines", &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Tags lists the location's contact tags.
func (s *Service) Tags(ctx context.Context, locationID string) ([]Tag, error) {
	return getOrFetch(s.cache, ctx, locationID+"_tags", func(ctx context.Context) ([]Tag, error) {
		raw, err := s.invoke(ctx, locationID, ghl.ToolListTags)
		if err != nil {
			return nil, err
		}
		var out []Tag
		if err := decodeField(raw, "tags", &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Refresh drops all cached entries for the location.
func (s *Service) Refresh(locationID string) error {
	return s.cache.InvalidateLocation(locationID)
}

func (s *Service) invoke(ctx context.Context, locationID string, tool ghl.Tool) (any, error) {
	token, err := s.tokens.GetToken(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("no credentials for location %s: %w", locationID, domain.ErrAuthentication)
	}
	return s.invoker.Invoke(ctx, token.AccessToken, locationID, tool, nil)
}

// decodeField pulls the named field out of a decoded API response and
// re-decodes it into out. An absent field leaves out empty.
func decodeField(raw any, field string, out any) error {
	obj, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("unexpected response shape %T: %w", raw, domain.ErrValidation)
	}
	value, ok := obj[field]
	if !ok {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("re-encode %s: %w", field, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %v: %w", field, err, domain.ErrValidation)
	}
	return nil
}
