package events

import "time"

const (
	SubjectStats = "rank.faceoff.stats"

	StreamName = "FACEOFF_EVENTS"

	// streamMaxAge bounds how long lifecycle events stay replayable.
	streamMaxAge = 30 * 24 * time.Hour
)

func SubjectSessionCreated(sessionID string) string   { return "rank.session." + sessionID + ".created" }
func SubjectSessionCompleted(sessionID string) string { return "rank.session." + sessionID + ".completed" }
func SubjectSessionReset(sessionID string) string     { return "rank.session." + sessionID + ".reset" }
func SubjectSessionDeleted(sessionID string) string   { return "rank.session." + sessionID + ".deleted" }
func SubjectComparisonRecorded(sessionID string) string {
	return "rank.session." + sessionID + ".comparison"
}
