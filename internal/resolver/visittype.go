package resolver

import (
	"strings"

	"github.com/jwalitptl/eligibility-checker/internal/model"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
)

// specialisationKeywords maps substrings of the specialisation name to visit
// types. Order matters: the first matching keyword wins.
var specialisationKeywords = []struct {
	Keyword   string
	VisitType model.VisitType
}{
	{"DENTAL", model.VisitTypeDental},
	{"DENTIST", model.VisitTypeDental},
	{"OPTICAL", model.VisitTypeOptical},
	{"OPTOMETRIST", model.VisitTypeOptical},
	{"OPHTHALMOLOGIST", model.VisitTypeOptical},
	{"EYE", model.VisitTypeOptical},
	{"MATERNITY", model.VisitTypeMaternity},
	{"OBSTETRIC", model.VisitTypeMaternity},
	{"GYNECOLOG", model.VisitTypeMaternity},
	{"PSYCHIATRY", model.VisitTypePsychiatry},
	{"PSYCHIATRIST", model.VisitTypePsychiatry},
	{"MENTAL", model.VisitTypePsychiatry},
	{"WELLNESS", model.VisitTypeWellness},
}

// VisitTypeResolver classifies an appointment into a visit category. It is a
// total function: anything unclassifiable is OUTPATIENT.
type VisitTypeResolver struct {
	logger *logger.Logger
}

func NewVisitTypeResolver(logger *logger.Logger) *VisitTypeResolver {
	return &VisitTypeResolver{logger: logger}
}

func (r *VisitTypeResolver) Resolve(appt *model.Appointment) model.VisitType {
	if name := strings.TrimSpace(appt.SpecialisationName); name != "" {
		upper := strings.ToUpper(name)
		for _, entry := range specialisationKeywords {
			if strings.Contains(upper, entry.Keyword) {
				r.logger.Debug("resolved visit type from specialisation",
					"specialisation", name, "visit_type", string(entry.VisitType))
				return entry.VisitType
			}
		}
	}

	// The upstream visit-type id has no known mapping to our categories.
	// Log it so the gap stays visible, but do not let it alter the result.
	if appt.VisitTypeID != "" {
		r.logger.Debug("appointment has visitTypeId but no mapping is available",
			"visit_type_id", appt.VisitTypeID)
	}

	if appt.Emergency {
		r.logger.Debug("resolved visit type EMERGENCY from emergency flag")
		return model.VisitTypeEmergency
	}

	return model.VisitTypeOutpatient
}
