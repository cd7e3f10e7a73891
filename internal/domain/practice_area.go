package domain

// PracticeArea is one of the fifteen legal-domain labels a judgment can be
// classified into, plus the NotClassified sentinel used when every
// classification tier comes up empty.
type PracticeArea string

const (
	PracticeAreaAdministrative       PracticeArea = "Administrative Law"
	PracticeAreaCommercial           PracticeArea = "Commercial Law"
	PracticeAreaCompetition          PracticeArea = "Competition Law"
	PracticeAreaConstitutional       PracticeArea = "Constitutional Law"
	PracticeAreaCriminal             PracticeArea = "Criminal Law"
	PracticeAreaDelictual            PracticeArea = "Delictual Law"
	PracticeAreaEnvironmental        PracticeArea = "Environmental Law"
	PracticeAreaFamily               PracticeArea = "Family Law"
	PracticeAreaInsurance            PracticeArea = "Insurance Law"
	PracticeAreaIntellectualProperty PracticeArea = "Intellectual Property Law"
	PracticeAreaLabour               PracticeArea = "Labour Law"
	PracticeAreaLandAndProperty      PracticeArea = "Land and Property Law"
	PracticeAreaPracticeProcedure    PracticeArea = "Practice and Procedure"
	PracticeAreaTax                  PracticeArea = "Tax Law"
	PracticeAreaArbitration          PracticeArea = "Arbitration"

	PracticeAreaNotClassified PracticeArea = "Not Classified"
)

// AllPracticeAreas lists the fifteen classifiable areas in taxonomy order.
// NotClassified is deliberately excluded: it is never a candidate label.
var AllPracticeAreas = []PracticeArea{
	PracticeAreaAdministrative,
	PracticeAreaCommercial,
	PracticeAreaCompetition,
	PracticeAreaConstitutional,
	PracticeAreaCriminal,
	PracticeAreaDelictual,
	PracticeAreaEnvironmental,
	PracticeAreaFamily,
	PracticeAreaInsurance,
	PracticeAreaIntellectualProperty,
	PracticeAreaLabour,
	PracticeAreaLandAndProperty,
	PracticeAreaPracticeProcedure,
	PracticeAreaTax,
	PracticeAreaArbitration,
}

// IsValidPracticeArea reports whether p is one of the fifteen taxonomy
// labels or the NotClassified sentinel.
func IsValidPracticeArea(p PracticeArea) bool {
	if p == PracticeAreaNotClassified {
		return true
	}
	for _, area := range AllPracticeAreas {
		if p == area {
			return true
		}
	}
	return false
}
