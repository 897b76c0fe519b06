package entities

// DemographicsSummary aggregates the clinical-trial demographics table into
// the counts and phrases rendered by the population-exposure section.
type DemographicsSummary struct {
	Outcome
	Studies         int
	Medicine        string
	ReportingPeriod string
	TotalSubjects   int
	GenderText      string
	AgeText         string
	RaceText        string
	Table           RawTable
}
