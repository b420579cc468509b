// Package rules holds scoring, level progression and gravity timing.
package rules

import "time"

var lineClearPoints = [...]int{0, 100, 300, 500, 800}

// tickTable is the gravity interval per level in seconds.
var tickTable = [...]float64{2.0, 1.8, 1.6, 1.4, 1.2, 1.0, 0.8, 0.6, 0.2}

const (
	SoftDropPoints = 1
	HardDropPoints = 2
	LinesPerLevel  = 10
)

// LineClear returns the points for clearing n rows at once on level.
func LineClear(n, level int) int {
	if n < 0 {
		n = 0
	}
	if n >= len(lineClearPoints) {
		n = len(lineClearPoints) - 1
	}
	return lineClearPoints[n] * (level + 1)
}

// Level derives the level from cleared lines.
func Level(startLevel, lines int) int {
	return startLevel + lines/LinesPerLevel
}

// TickInterval is the gravity period for level. Levels past the table use
// its last entry.
func TickInterval(level int) float64 {
	if level < 0 {
		level = 0
	}
	if level >= len(tickTable) {
		level = len(tickTable) - 1
	}
	return tickTable[level]
}

// TickDuration is TickInterval as a time.Duration.
func TickDuration(level int) time.Duration {
	return time.Duration(TickInterval(level) * float64(time.Second))
}

// Scoreboard accumulates a run's score.
type Scoreboard struct {
	StartLevel int
	Score      int
	Lines      int
	Level      int
}

// NewScoreboard starts at startLevel.
func NewScoreboard(startLevel int) Scoreboard {
	return Scoreboard{StartLevel: startLevel, Level: startLevel}
}

// Clear credits n cleared rows and returns the points earned. The points use
// the level before the clear.
func (s *Scoreboard) Clear(n int) int {
	points := LineClear(n, s.Level)
	s.Score += points
	s.Lines += n
	s.Level = Level(s.StartLevel, s.Lines)
	return points
}

// SoftDrop credits rows of soft drop.
func (s *Scoreboard) SoftDrop(rows int) {
	s.Score += rows * SoftDropPoints
}

// HardDrop credits rows of hard drop.
func (s *Scoreboard) HardDrop(rows int) {
	s.Score += rows * HardDropPoints
}
