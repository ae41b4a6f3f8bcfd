package maintenance

import (
	"fleet-reserve/internal/domain/vehicle"
)

// Status is a maintenance severity tier, least to most urgent.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusApproaching         Status = "approaching"
	StatusUrgent              Status = "urgent"
	StatusOverdue             Status = "overdue"
	StatusOverdueWithinMargin Status = "overdue_within_margin"
	StatusOverdueBlocked      Status = "overdue_blocked"
)

var severityRank = map[Status]int{
	StatusOK:                  0,
	StatusApproaching:         1,
	StatusUrgent:              2,
	StatusOverdue:             3,
	StatusOverdueWithinMargin: 3,
	StatusOverdueBlocked:      4,
}

// MoreSevere returns the worse of a and b.
func MoreSevere(a, b Status) Status {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// Report is the derived maintenance state of one vehicle. It is recomputed on
// every read from the stored odometer and thresholds, never persisted.
type Report struct {
	ServiceStatus   Status `json:"service_status"`
	RevisionStatus  Status `json:"revision_status"`
	OverallStatus   Status `json:"overall_status"`
	KmUntilService  int    `json:"km_until_service"`
	KmUntilRevision int    `json:"km_until_revision"`
	MarginRemaining int    `json:"margin_remaining"`
}

// Blocked reports whether the vehicle must be excluded from availability and
// from new reservations.
func (r Report) Blocked() bool {
	return r.RevisionStatus == StatusOverdueBlocked
}

// Thresholds are the distance bands for the softer severity tiers.
type Thresholds struct {
	ApproachingKm int
	UrgentKm      int
}

func DefaultThresholds() Thresholds {
	return Thresholds{ApproachingKm: 1000, UrgentKm: 500}
}

// Engine derives maintenance status. It is pure: Evaluate has no side effects
// and is the single owner of the threshold math. No other component may
// duplicate these comparisons.
type Engine struct {
	thresholds Thresholds
}

func NewEngine(thresholds Thresholds) *Engine {
	if thresholds.ApproachingKm <= 0 {
		thresholds.ApproachingKm = 1000
	}
	if thresholds.UrgentKm <= 0 {
		thresholds.UrgentKm = 500
	}
	return &Engine{thresholds: thresholds}
}

// Evaluate classifies both maintenance tracks for v. Revision honors the
// margin window; service has no margin and therefore never blocks.
func (e *Engine) Evaluate(v *vehicle.Vehicle) Report {
	kmUntilService := v.NextServiceOdometer - v.CurrentOdometer
	kmUntilRevision := v.NextRevisionOdometer - v.CurrentOdometer
	marginRemaining := v.NextRevisionOdometer + v.ServiceMarginKm - v.CurrentOdometer

	report := Report{
		ServiceStatus:   e.classifyService(kmUntilService),
		RevisionStatus:  e.classifyRevision(kmUntilRevision, marginRemaining),
		KmUntilService:  kmUntilService,
		KmUntilRevision: kmUntilRevision,
		MarginRemaining: marginRemaining,
	}
	report.OverallStatus = MoreSevere(report.ServiceStatus, report.RevisionStatus)

	return report
}

// classifyRevision evaluates the precedence chain; first match wins.
func (e *Engine) classifyRevision(kmUntil, marginRemaining int) Status {
	switch {
	case marginRemaining <= 0:
		return StatusOverdueBlocked
	case kmUntil <= 0:
		return StatusOverdueWithinMargin
	case kmUntil <= e.thresholds.UrgentKm:
		return StatusUrgent
	case kmUntil <= e.thresholds.ApproachingKm:
		return StatusApproaching
	default:
		return StatusOK
	}
}

func (e *Engine) classifyService(kmUntil int) Status {
	switch {
	case kmUntil <= 0:
		return StatusOverdue
	case kmUntil <= e.thresholds.UrgentKm:
		return StatusUrgent
	case kmUntil <= e.thresholds.ApproachingKm:
		return StatusApproaching
	default:
		return StatusOK
	}
}
