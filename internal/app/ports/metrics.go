package ports

// TurnMetrics counts turn outcomes for the KPI endpoint.
type TurnMetrics interface {
	RecordTurn(died, closeCall bool)
	RecordConflict()
	RecordGeneratorFailure()
}
