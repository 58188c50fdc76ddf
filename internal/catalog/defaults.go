package catalog

// Default returns the built-in academy catalog.
func Default() Catalog {
	return Catalog{Positions: []Position{
		{Name: "Goalkeeper", Stats: []string{"saves", "clean_sheets", "goals_conceded"}},
		{Name: "Center Back", Stats: []string{"passes_to_fullback", "passes_into_red_zone", "tackles_won", "aerial_duels_won", "turnovers", "ball_recoveries"}},
		{Name: "Fullback", Stats: []string{"red_zone_passes", "passes_behind_line", "defensive_1v1_won", "turnovers", "crosses", "assists"}},
		{Name: "Defensive Midfielder/Pivot", Stats: []string{"ball_recoveries", "passes_completed", "turnovers", "creating_3_backline", "forward_passes_10plus"}},
		{Name: "Attacking Midfielder", Stats: []string{"redzone_receptions", "passes_behind_line", "shots", "shots_on_target", "assists", "goals", "ball_recoveries"}},
		{Name: "Wide Forward", Stats: []string{"receptions_behind_line", "paz_crosses", "assists", "goals", "ball_recoveries", "passes_behind_line"}},
		{Name: "Center Forward", Stats: []string{"receptions_behind_line", "assists", "goals", "ball_recoveries", "successful_holdup_plays", "forced_errors"}},
	}}
}
