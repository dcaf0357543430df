package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/roach88/subsamplr/internal/config"
)

// Domain prefixes. The version suffix allows the encoding to change
// without colliding with earlier hashes.
const (
	DomainConfig    = "subsamplr/config/v1"
	DomainSelection = "subsamplr/selection/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash canonicalises v and hashes it under domain.
func Hash(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// ConfigHash identifies a sampling design: the variables, the source
// query and identifier column, and the sample parameters. Source paths
// are not hashed.
func ConfigHash(cfg *config.Config) (string, error) {
	return Hash(DomainConfig, ConfigObject(cfg))
}

// ConfigObject is the canonical tree hashed by ConfigHash.
func ConfigObject(cfg *config.Config) map[string]any {
	vars := make([]any, len(cfg.Variables))
	for i, d := range cfg.Variables {
		v := map[string]any{
			"name":  d.Name,
			"class": string(d.Class),
		}
		if d.Type != "" {
			v["type"] = string(d.Type)
		}
		if len(d.Categories) > 0 {
			v["categories"] = normalizeList(d.Categories)
		} else {
			v["min"] = d.Min
			v["max"] = d.Max
			v["bin_size"] = d.BinSize
			if d.Discretisation != 0 {
				v["discretisation"] = d.Discretisation
			}
		}
		vars[i] = v
	}

	weights := make(map[string]any, len(cfg.Sample.Weights))
	for name, w := range cfg.Sample.Weights {
		weights[name] = slices.Clone(w)
	}

	return map[string]any{
		"variables": vars,
		"source": map[string]any{
			"kind":    cfg.Source.Kind,
			"unit_id": cfg.Source.UnitID,
			"query":   cfg.Source.Query,
		},
		"sample": map[string]any{
			"size":             cfg.Sample.Size,
			"seed":             cfg.Sample.Seed,
			"track_exclusions": cfg.Sample.Tracking(),
			"weights":          weights,
		},
	}
}

// SelectionHash identifies a set of selected units regardless of order.
func SelectionHash(units []string) string {
	sorted := slices.Clone(units)
	slices.Sort(sorted)
	data, _ := MarshalCanonical(sorted)
	return hashWithDomain(DomainSelection, data)
}

// normalizeList widens decoded scalars to the types MarshalCanonical
// accepts.
func normalizeList(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case int8:
			out[i] = int64(n)
		case int16:
			out[i] = int64(n)
		case int32:
			out[i] = int64(n)
		case uint:
			out[i] = uint64(n)
		case uint8:
			out[i] = uint64(n)
		case uint16:
			out[i] = uint64(n)
		case uint32:
			out[i] = uint64(n)
		case float32:
			out[i] = float64(n)
		default:
			out[i] = v
		}
	}
	return out
}
