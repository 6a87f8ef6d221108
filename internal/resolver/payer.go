package resolver

import (
	"context"
	"regexp"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/internal/repository"
	redisrepo "github.com/jwalitptl/eligibility-checker/internal/repository/redis"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
)

// PayerCodeBoth directs the eligibility service to search every payer
// configuration. The orchestrator sets it when an appointment has no payer
// info but does carry a national-id document; the resolver never derives it.
const PayerCodeBoth = "BOTH"

var (
	tpaCodePattern   = regexp.MustCompile(`^TPA[0-9A-Z]+$`)
	insCodePattern   = regexp.MustCompile(`^INS[0-9A-Z]+$`)
	otherCodePattern = regexp.MustCompile(`^(D|DHPO|RIYATI)[0-9A-Z]*$`)
)

// PayerResolver maps appointment payer fields to a normalized payer code.
// Structured codes are trusted over free-text names, and receiver-side fields
// over their payer-side mirrors. Name lookups go through the clinic's TPA
// configuration, cached in process memory per clinic id.
type PayerResolver struct {
	clinicID string
	configs  repository.TPAConfigRepository
	cache    *gocache.Cache
	static   map[string]string
	logger   *logger.Logger
}

func NewPayerResolver(clinicID string, configs repository.TPAConfigRepository, logger *logger.Logger) *PayerResolver {
	return &PayerResolver{
		clinicID: clinicID,
		configs:  configs,
		// The mapping only changes when the clinic id changes, so entries
		// never expire on their own. If the external configuration is edited
		// under the same clinic id the cache goes stale until Invalidate is
		// called.
		cache: gocache.New(gocache.NoExpiration, 0),
		// Static fallback, extensible per deployment.
		static: map[string]string{},
		logger: logger,
	}
}

// Resolve extracts a payer code from the appointment, first match wins.
// Returns "" when nothing matches.
func (r *PayerResolver) Resolve(ctx context.Context, appt *model.Appointment) string {
	receiverCode := strings.TrimSpace(appt.ReceiverCode)
	payerCode := strings.TrimSpace(appt.PayerCode)

	if receiverCode != "" && tpaCodePattern.MatchString(receiverCode) {
		r.logger.Debug("resolved payer code from receiver_code", "code", receiverCode)
		return receiverCode
	}
	if payerCode != "" && tpaCodePattern.MatchString(payerCode) {
		r.logger.Debug("resolved payer code from payer_code", "code", payerCode)
		return payerCode
	}
	if receiverCode != "" && insCodePattern.MatchString(receiverCode) {
		r.logger.Debug("resolved INS code from receiver_code", "code", receiverCode)
		return receiverCode
	}
	if payerCode != "" && insCodePattern.MatchString(payerCode) {
		r.logger.Debug("resolved INS code from payer_code", "code", payerCode)
		return payerCode
	}
	if receiverCode != "" && otherCodePattern.MatchString(receiverCode) {
		r.logger.Debug("resolved legacy code from receiver_code", "code", receiverCode)
		return receiverCode
	}
	if payerCode != "" && otherCodePattern.MatchString(payerCode) {
		r.logger.Debug("resolved legacy code from payer_code", "code", payerCode)
		return payerCode
	}

	mapping := r.nameMapping(ctx)

	receiverName := redisrepo.NormalizeInsuranceName(appt.ReceiverName)
	if receiverName != "" {
		if code, ok := mapping[receiverName]; ok {
			r.logger.Debug("resolved payer code from receiver_name", "name", receiverName, "code", code)
			return code
		}
	}
	payerName := redisrepo.NormalizeInsuranceName(appt.PayerName)
	if payerName != "" {
		if code, ok := mapping[payerName]; ok {
			r.logger.Debug("resolved payer code from payer_name", "name", payerName, "code", code)
			return code
		}
	}

	if receiverName != "" {
		if code, ok := r.static[receiverName]; ok {
			r.logger.Debug("resolved payer code from static fallback", "name", receiverName, "code", code)
			return code
		}
	}
	if payerName != "" {
		if code, ok := r.static[payerName]; ok {
			r.logger.Debug("resolved payer code from static fallback", "name", payerName, "code", code)
			return code
		}
	}

	r.logger.Warn("could not resolve payer code",
		"receiver_code", receiverCode, "payer_code", payerCode,
		"receiver_name", appt.ReceiverName, "payer_name", appt.PayerName)
	return ""
}

// Valid reports whether a code belongs to one of the known code families or
// is the BOTH sentinel.
func (r *PayerResolver) Valid(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	if code == PayerCodeBoth {
		return true
	}
	return tpaCodePattern.MatchString(code) ||
		insCodePattern.MatchString(code) ||
		otherCodePattern.MatchString(code)
}

// Invalidate drops the cached name mapping so the next Resolve reloads it.
func (r *PayerResolver) Invalidate() {
	r.cache.Flush()
}

func (r *PayerResolver) nameMapping(ctx context.Context) map[string]string {
	if cached, ok := r.cache.Get(r.clinicID); ok {
		return cached.(map[string]string)
	}

	mapping, err := r.configs.ListMappings(ctx, r.clinicID)
	if err != nil {
		// Fall through to the static table; an outage of the config store
		// must not fail pattern-based resolution.
		r.logger.Error(err, "failed to load TPA configs, using empty name mapping",
			"clinic_id", r.clinicID)
		mapping = map[string]string{}
	} else {
		r.logger.Info("loaded insurance name mappings",
			"clinic_id", r.clinicID, "count", len(mapping))
	}

	r.cache.Set(r.clinicID, mapping, gocache.NoExpiration)
	return mapping
}
