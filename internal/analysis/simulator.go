package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ImageAnalyzer inspects a billboard image for violations.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageURL string, lat, lng float64) (*ImageAnalysis, error)
}

// SurveyRunner flies a drone survey over an area and reports findings.
type SurveyRunner interface {
	RunSurvey(ctx context.Context, area SurveyArea) (*SurveyResult, error)
}

// BillboardInfo summarizes the physical billboard in an analyzed image.
type BillboardInfo struct {
	Size                string `json:"size"`
	Location            string `json:"location"`
	Content             string `json:"content"`
	StructuralCondition string `json:"structural_condition"` // good, fair, poor, dangerous
	EstimatedAge        string `json:"estimated_age"`
}

// ImageAnalysis is the outcome of an image inspection.
type ImageAnalysis struct {
	IsUnauthorized    bool          `json:"is_unauthorized"`
	Confidence        int           `json:"confidence"` // percentage, 70-99
	Violations        []string      `json:"violations"`
	StructuralHazards []string      `json:"structural_hazards"`
	ObsceneContent    []string      `json:"obscene_content"`
	PoliticalContent  []string      `json:"political_content"`
	QRCodeDetected    bool          `json:"qr_code_detected"`
	BillboardInfo     BillboardInfo `json:"billboard_info"`
}

// SurveyArea describes the region a drone survey covers.
type SurveyArea struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	RadiusKM  float64 `json:"radius_km"`
	AltitudeM float64 `json:"altitude_m"`
}

// SurveyViolation is one violation spotted during a drone survey.
type SurveyViolation struct {
	ID            string  `json:"id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	ViolationType string  `json:"violation_type"`
	Severity      string  `json:"severity"`
	ImageURL      string  `json:"image_url"`
}

// SurveyCoverage reports the flight statistics of a survey.
type SurveyCoverage struct {
	AreaScannedKM2     int `json:"area_scanned_km2"`
	FlightTimeMinutes  int `json:"flight_time_minutes"`
	BatteryUsedPercent int `json:"battery_used_percent"`
}

// SurveyResult is the outcome of a drone survey.
type SurveyResult struct {
	MissionID       string            `json:"mission_id"`
	TotalBillboards int               `json:"total_billboards"`
	Violations      []SurveyViolation `json:"violations"`
	Coverage        SurveyCoverage    `json:"coverage"`
}

var hazardPool = []string{
	"Visible rust and corrosion detected",
	"Billboard appears tilted or unstable",
	"Structural cracks visible in support frame",
	"Loose or damaged panels detected",
}

var violationPool = []string{
	"Billboard exceeds permitted dimensions",
	"Billboard placed within 200m of traffic signal",
	"Billboard blocking visibility of road signs",
	"Billboard placed in no-advertising zone near school/hospital",
}

var surveyViolationTypes = []string{
	"Oversized",
	"Unauthorized Placement",
	"Missing License",
	"Structural Hazard",
}

var severities = []string{"low", "medium", "high", "critical"}

var sampleContent = []string{
	"MEGA SALE - 50% OFF",
	"New Restaurant Opening Soon",
	"Premium Quality Products",
	"Grand Festival Discounts",
	"Commercial Advertisement",
}

// Simulator produces randomized analysis results in place of real AI and
// drone backends. When constructed with a client, each analysis first goes
// through the backend gate so rate limits and outages surface to callers.
// A fixed seed makes a simulator's output reproducible.
type Simulator struct {
	client *Client

	mu  sync.Mutex
	rng *rand.Rand
}

var (
	_ ImageAnalyzer = (*Simulator)(nil)
	_ SurveyRunner  = (*Simulator)(nil)
)

// NewSimulator creates a simulator. client may be nil to skip the backend
// gate; seed 0 falls back to the current time.
func NewSimulator(client *Client, seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		client: client,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// gate runs the backend call that precedes a simulated result.
func (s *Simulator) gate(ctx context.Context, prompt string) error {
	if s.client == nil {
		return nil
	}
	result := s.client.Fetch(ctx, prompt)
	if !result.Success {
		return result.Err
	}
	return nil
}

func (s *Simulator) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Simulator) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// pick returns up to max random entries from pool, each with the given
// probability.
func (s *Simulator) pick(pool []string, probability float64, max int) []string {
	var out []string
	for _, item := range pool {
		if len(out) == max {
			break
		}
		if s.float() < probability {
			out = append(out, item)
		}
	}
	return out
}

// AnalyzeImage produces a randomized inspection of a billboard image.
func (s *Simulator) AnalyzeImage(ctx context.Context, imageURL string, lat, lng float64) (*ImageAnalysis, error) {
	prompt := fmt.Sprintf("Analyze billboard image at location %.4f, %.4f", lat, lng)
	if err := s.gate(ctx, prompt); err != nil {
		return nil, err
	}

	violations := s.pick(violationPool, 0.4, 3)
	hazards := s.pick(hazardPool, 0.2, 4)
	obscene := s.pick([]string{"inappropriate", "offensive"}, 0.1, 2)
	political := s.pick([]string{"vote", "election", "campaign"}, 0.15, 3)
	qrDetected := s.float() < 0.6
	if !qrDetected {
		violations = append(violations, "Missing required QR code with license information")
	}

	analysis := &ImageAnalysis{
		IsUnauthorized:    len(violations) > 0 || len(hazards) > 0,
		Confidence:        70 + s.intn(30),
		Violations:        violations,
		StructuralHazards: hazards,
		ObsceneContent:    obscene,
		PoliticalContent:  political,
		QRCodeDetected:    qrDetected,
		BillboardInfo: BillboardInfo{
			Size:                fmt.Sprintf("%dx%d ft", 30+s.intn(20), 15+s.intn(10)),
			Location:            fmt.Sprintf("%.4f, %.4f", lat, lng),
			Content:             sampleContent[s.intn(len(sampleContent))],
			StructuralCondition: structuralCondition(len(hazards)),
			EstimatedAge:        fmt.Sprintf("%d years", 1+s.intn(5)),
		},
	}
	return analysis, nil
}

// structuralCondition grades a billboard by its hazard count.
func structuralCondition(hazards int) string {
	switch hazards {
	case 0:
		return "good"
	case 1:
		return "fair"
	case 2:
		return "poor"
	default:
		return "dangerous"
	}
}

// RunSurvey produces a randomized drone survey over the given area.
func (s *Simulator) RunSurvey(ctx context.Context, area SurveyArea) (*SurveyResult, error) {
	prompt := fmt.Sprintf("Survey billboards around %.4f, %.4f within %.1f km", area.CenterLat, area.CenterLng, area.RadiusKM)
	if err := s.gate(ctx, prompt); err != nil {
		return nil, err
	}

	count := 5 + s.intn(15)
	violations := make([]SurveyViolation, count)
	for i := range violations {
		violations[i] = SurveyViolation{
			ID:            fmt.Sprintf("VIOLATION_%d", i+1),
			Latitude:      area.CenterLat + (s.float()-0.5)*0.1,
			Longitude:     area.CenterLng + (s.float()-0.5)*0.1,
			ViolationType: surveyViolationTypes[s.intn(len(surveyViolationTypes))],
			Severity:      severities[s.intn(len(severities))],
			ImageURL:      "https://images.example.org/surveys/billboard.jpeg",
		}
	}

	return &SurveyResult{
		MissionID:       fmt.Sprintf("DRONE_%d_%06d", time.Now().UnixMilli(), s.intn(1000000)),
		TotalBillboards: count + 10 + s.intn(20),
		Violations:      violations,
		Coverage: SurveyCoverage{
			AreaScannedKM2:     25 + s.intn(50),
			FlightTimeMinutes:  60 + s.intn(120),
			BatteryUsedPercent: 60 + s.intn(40),
		},
	}, nil
}
