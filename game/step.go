package game

// EstablishAnchor records that the player confirmed the world anchor.
// Confirming also starts tracking.
func EstablishAnchor(s *State) {
	s.AnchorEstablished = true
	s.TrackingActive = true
}

func SetTracking(s *State, active bool) {
	s.TrackingActive = active
}

// Tap places the next treasure while in Placing. Taps before the anchor is
// confirmed, while tracking is lost, or outside Placing do nothing.
func Tap(s *State, rng Rand) []Event {
	if !s.AnchorEstablished || !s.TrackingActive {
		return nil
	}
	if s.Phase != Placing || s.TreasuresPlaced >= MaxTreasures {
		return nil
	}

	t := Spawn(s.TreasuresPlaced, rng, s.Tuning)
	s.Treasures = append(s.Treasures, &t)
	s.TreasuresPlaced++

	events := []Event{{Kind: TreasureSpawned, Treasure: t, Phase: s.Phase, Score: s.Score}}
	if s.TreasuresPlaced == MaxTreasures {
		s.Phase = Hunting
		events = append(events, Event{Kind: PhaseChanged, Phase: Hunting, Score: s.Score})
	}
	return events
}

// UpdatePositions runs the proximity check for one frame. positions holds
// the current world position per treasure index; a missing entry falls
// back to the spawn position.
func UpdatePositions(s *State, player Vec3, positions map[int]Vec3) []Event {
	if s.Phase != Hunting || !s.AnchorEstablished {
		return nil
	}

	var events []Event
	for _, t := range s.Treasures {
		if t == nil || t.Collected {
			continue
		}
		pos, ok := positions[t.Index]
		if !ok {
			pos = t.Position
		}
		if player.DistanceTo(pos) >= s.Tuning.CollectRadius {
			continue
		}
		t.Collected = true
		s.Score++
		events = append(events, Event{Kind: TreasureCollected, Treasure: *t, Phase: s.Phase, Score: s.Score})
	}

	if s.Score == MaxTreasures {
		s.Phase = Won
		events = append(events,
			Event{Kind: PhaseChanged, Phase: Won, Score: s.Score},
			Event{Kind: SessionComplete, Phase: Won, Score: s.Score},
		)
	}
	return events
}

// Release drops a collected treasure from the active set once its
// collection animation has finished.
func Release(s *State, index int) bool {
	if index < 0 || index >= len(s.Treasures) {
		return false
	}
	t := s.Treasures[index]
	if t == nil || !t.Collected || s.Released[index] {
		return false
	}
	if s.Released == nil {
		s.Released = make(map[int]bool)
	}
	s.Released[index] = true
	return true
}
