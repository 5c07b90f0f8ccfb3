package media_archiver

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alanbriolat/media-archiver/generic"
)

type OutcomeID string

func NewOutcomeID() OutcomeID {
	return OutcomeID(generic.Unwrap(uuid.NewRandom()).String())
}

type OutcomeStatus string

const (
	OutcomeStatusSuccess OutcomeStatus = "Success"
	OutcomeStatusFailed  OutcomeStatus = "Failed"
)

// OutcomeRecord is the result of processing one URL.
type OutcomeRecord struct {
	ID        OutcomeID     `json:"id"`
	At        time.Time     `json:"at"`
	URL       string        `json:"url"`
	MediaKind MediaKind     `json:"media_kind"`
	MediaID   string        `json:"media_id"`
	Author    string        `json:"author"`
	Status    OutcomeStatus `json:"status"`
	// Strategy names the resolution strategy that succeeded, if any.
	Strategy string `json:"strategy,omitempty"`
	Details  string `json:"details"`
}

func (r OutcomeRecord) Succeeded() bool {
	return r.Status == OutcomeStatusSuccess
}

// An Archive keeps OutcomeRecords beyond the lifetime of the process.
type Archive interface {
	WriteOutcome(*OutcomeRecord) error
	ListOutcomes() ([]OutcomeRecord, error)
}

type NilArchive struct{}

func (a NilArchive) WriteOutcome(_ *OutcomeRecord) error {
	return nil
}

func (a NilArchive) ListOutcomes() ([]OutcomeRecord, error) {
	return nil, nil
}

// SessionLedger accumulates one OutcomeRecord per processed URL, in order, for the end-of-session summary. Repeated
// attempts on the same media produce separate records.
type SessionLedger struct {
	records []OutcomeRecord
	archive Archive
	log     *zap.SugaredLogger
}

// NewSessionLedger creates an empty ledger. Records are also written to archive, which may be nil.
func NewSessionLedger(archive Archive) *SessionLedger {
	if archive == nil {
		archive = NilArchive{}
	}
	return &SessionLedger{
		archive: archive,
		log:     zap.S().Named("ledger"),
	}
}

// Record appends r. It never fails: archive errors are logged and otherwise ignored.
func (l *SessionLedger) Record(r OutcomeRecord) {
	if r.ID == "" {
		r.ID = NewOutcomeID()
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}
	l.records = append(l.records, r)
	if err := l.archive.WriteOutcome(&r); err != nil {
		l.log.Warnf("failed to archive outcome %s: %v", r.ID, err)
	}
}

// Summary returns a copy of every record so far, in the order they were recorded.
func (l *SessionLedger) Summary() []OutcomeRecord {
	summary := make([]OutcomeRecord, len(l.records))
	copy(summary, l.records)
	return summary
}

// CountOutcomes returns how many of records succeeded and how many failed.
func CountOutcomes(records []OutcomeRecord) (succeeded int, failed int) {
	for _, r := range records {
		if r.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
