package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/eligibility-checker/pkg/logger"
)

const tpaConfigKeyPrefix = "clinic:tpa"

// tpaConfig is one clinic payer configuration entry as stored by the admin
// app. insurance_name comes from the bulk import, tpa_name from form
// submission, ins_payer is an extra alias.
type tpaConfig struct {
	InsCode       string `json:"ins_code"`
	InsuranceName string `json:"insurance_name"`
	TPAName       string `json:"tpa_name"`
	InsPayer      string `json:"ins_payer"`
}

// TPAConfigRepository reads clinic payer configurations from Redis.
type TPAConfigRepository struct {
	client *redis.Client
	logger *logger.Logger
}

func NewTPAConfigRepository(client *redis.Client, logger *logger.Logger) *TPAConfigRepository {
	return &TPAConfigRepository{
		client: client,
		logger: logger,
	}
}

// ListMappings builds a normalized insurance-name to payer-code mapping from
// every TPA config stored for the clinic. Name keys are trimmed and
// uppercased; insurance_name wins over tpa_name, which wins over ins_payer.
func (r *TPAConfigRepository) ListMappings(ctx context.Context, clinicID string) (map[string]string, error) {
	mapping := make(map[string]string)

	pattern := fmt.Sprintf("%s:%s:*", tpaConfigKeyPrefix, clinicID)
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()
		if strings.HasSuffix(key, ":index") {
			continue
		}

		data, err := r.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read TPA config %s: %w", key, err)
		}

		var cfg tpaConfig
		if err := json.Unmarshal([]byte(data), &cfg); err != nil {
			r.logger.Warn("skipping unparseable TPA config", "key", key, "error", err.Error())
			continue
		}
		if cfg.InsCode == "" {
			continue
		}

		if cfg.InsuranceName != "" {
			mapping[NormalizeInsuranceName(cfg.InsuranceName)] = cfg.InsCode
		} else if cfg.TPAName != "" {
			name := NormalizeInsuranceName(cfg.TPAName)
			if _, exists := mapping[name]; !exists {
				mapping[name] = cfg.InsCode
			}
		}

		if cfg.InsPayer != "" {
			name := NormalizeInsuranceName(cfg.InsPayer)
			if _, exists := mapping[name]; !exists {
				mapping[name] = cfg.InsCode
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan TPA configs for clinic %s: %w", clinicID, err)
	}

	return mapping, nil
}

// NormalizeInsuranceName canonicalizes a payer name for mapping lookups.
func NormalizeInsuranceName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
