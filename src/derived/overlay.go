package derived

import "market-sync/src/models"

// ResolveOverlay picks the single banner a UI shell should show for a
// snapshot. An active market event always wins, then a pending forecast,
// then a running race.
func ResolveOverlay(snapshot *models.MMarketSnapshot) models.MOverlay {
	if snapshot == nil {
		return models.MOverlay{Kind: models.OverlayDefault}
	}
	if snapshot.Event != nil {
		return models.MOverlay{Kind: models.OverlayEvent, Event: snapshot.Event}
	}
	if snapshot.Forecast != nil {
		return models.MOverlay{Kind: models.OverlayForecast, Forecast: snapshot.Forecast}
	}
	if snapshot.Race != nil {
		return models.MOverlay{Kind: models.OverlayRace, Race: snapshot.Race}
	}
	return models.MOverlay{Kind: models.OverlayDefault}
}
