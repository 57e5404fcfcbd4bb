// Package scoring provides the pure point, level, and rank calculations.
//
// Every function here is a deterministic function of its inputs. Level and
// rank in particular are always recomputed from a point total and never
// incrementally mutated, so stored snapshots cannot drift from the balance
// they were derived from.
package scoring

import (
	"math"

	"github.com/urbansignal/billboard-watch/internal/models"
)

// Action names recognized by PointsForAction.
const (
	ActionReportSubmitted       = "report_submitted"
	ActionReportVerified        = "report_verified"
	ActionReportResolved        = "report_resolved"
	ActionHighAccuracyBonus     = "high_accuracy_bonus"
	ActionFirstReportBonus      = "first_report_bonus"
	ActionStreakBonus           = "streak_bonus"
	ActionAIScanUsed            = "ai_scan_used"
	ActionDroneSurveyCompleted  = "drone_survey_completed"
	ActionQRCodeScanned         = "qr_code_scanned"
	ActionStructuralHazardFound = "structural_hazard_found"
	ActionObsceneContentFound   = "obscene_content_found"
	ActionPoliticalAdFound      = "political_ad_found"
)

// VerificationBonus is the flat award to a report's submitter when the
// report is verified, on top of the points fixed at creation.
const VerificationBonus = 25

// actionPoints is the fixed base award table. Unknown actions yield 0.
var actionPoints = map[string]int{
	ActionReportSubmitted:       25,
	ActionReportVerified:        50,
	ActionReportResolved:        100,
	ActionHighAccuracyBonus:     25,
	ActionFirstReportBonus:      50,
	ActionStreakBonus:           10,
	ActionAIScanUsed:            5,
	ActionDroneSurveyCompleted:  200,
	ActionQRCodeScanned:         15,
	ActionStructuralHazardFound: 75,
	ActionObsceneContentFound:   100,
	ActionPoliticalAdFound:      150,
}

// severityPoints is the award fixed on a report at creation time. It is a
// distinct table from actionPoints and the two are deliberately not
// reconciled.
var severityPoints = map[string]int{
	models.SeverityLow:      25,
	models.SeverityMedium:   50,
	models.SeverityHigh:     75,
	models.SeverityCritical: 100,
}

// ActionDetails carries the optional modifiers of a point-earning action.
type ActionDetails struct {
	Severity          string
	FirstTimeLocation bool
}

// PointsForAction returns the points earned for a named action. Critical
// severity doubles the base award and high severity multiplies it by 1.5;
// a flat +20 is added for the account's first report from a location. The
// result is floored to an integer.
func PointsForAction(action string, details *ActionDetails) int {
	base := float64(actionPoints[action])

	if details != nil {
		switch details.Severity {
		case models.SeverityCritical:
			base *= 2
		case models.SeverityHigh:
			base *= 1.5
		}
		if details.FirstTimeLocation {
			base += 20
		}
	}

	return int(math.Floor(base))
}

// PointsForSeverity returns the award fixed on a report at creation.
// Unknown severities yield 0.
func PointsForSeverity(severity string) int {
	return severityPoints[severity]
}

// Level returns the level for a point total: 0 below 100 points, then one
// level per 200 points.
func Level(points int) int {
	if points < 100 {
		return 0
	}
	return (points-100)/200 + 1
}

// Rank returns the human-readable rank label for a point total. Boundaries
// are inclusive on the lower bound, exclusive on the upper.
func Rank(points int) string {
	switch {
	case points < 100:
		return "Newcomer"
	case points < 500:
		return "Bronze Contributor"
	case points < 1000:
		return "Silver Guardian"
	case points < 2000:
		return "Gold Protector"
	case points < 5000:
		return "Platinum Champion"
	default:
		return "Diamond Legend"
	}
}

// Derive returns the level and rank snapshots for a point total. It is the
// single recompute function used inside point-mutation transactions.
func Derive(points int) (int, string) {
	return Level(points), Rank(points)
}

// LevelProgress describes an account's position between level thresholds.
type LevelProgress struct {
	CurrentLevel int     `json:"current_level"`
	NextLevel    int     `json:"next_level"`
	PointsNeeded int     `json:"points_needed"`
	Progress     float64 `json:"progress"` // percentage, clamped to [0, 100]
}

// ProgressToNextLevel computes progress within the current level span.
// The first span covers 0-100 points; every later span covers 200.
func ProgressToNextLevel(points int) LevelProgress {
	currentLevel := Level(points)

	var pointsForNextLevel int
	if currentLevel == 0 {
		pointsForNextLevel = 100
	} else {
		pointsForNextLevel = 100 + currentLevel*200
	}

	pointsNeeded := pointsForNextLevel - points
	if pointsNeeded < 0 {
		pointsNeeded = 0
	}

	var progress float64
	if currentLevel == 0 {
		progress = float64(points) / 100 * 100
	} else {
		currentThreshold := 100 + (currentLevel-1)*200
		progress = float64(points-currentThreshold) / 200 * 100
	}
	progress = math.Min(100, math.Max(0, progress))

	return LevelProgress{
		CurrentLevel: currentLevel,
		NextLevel:    currentLevel + 1,
		PointsNeeded: pointsNeeded,
		Progress:     progress,
	}
}
