// Package sharedtree wires the changeset algebra of one collaborative
// editing session together: the field-kind registry, the change family, the
// reference forest and the commit enricher, configured through settings.
package sharedtree

import (
	"go.uber.org/zap"

	"github.com/ether/sharedtree-go/lib/enricher"
	"github.com/ether/sharedtree-go/lib/family"
	"github.com/ether/sharedtree-go/lib/fieldkind"
	"github.com/ether/sharedtree-go/lib/forest"
	"github.com/ether/sharedtree-go/lib/settings"
	"github.com/ether/sharedtree-go/lib/utils"
)

type Session struct {
	Settings *settings.Settings
	Logger   *zap.SugaredLogger
	Kinds    *fieldkind.Registry
	Family   *family.Family
	Forest   *forest.Forest
	Arena    *enricher.CommitArena
	Enricher *enricher.CommitEnricher
}

// NewSession builds a fully wired local editing session. jsonConfig may be
// empty, in which case the settings file and environment are consulted and
// defaults apply.
func NewSession(jsonConfig string) (*Session, error) {
	var retrievedSettings, err = settings.ReadConfig(jsonConfig)
	if err != nil {
		return nil, err
	}

	var logger = utils.SetupLoggerWithLevel(retrievedSettings.LogLevel)

	var familyLogger = logger
	if retrievedSettings.SuppressAlgebraDebugLogs {
		familyLogger = zap.NewNop().Sugar()
	}

	var kinds = fieldkind.NewRegistry()
	var fam = family.New(kinds, familyLogger)
	var storage = forest.New()
	var arena = enricher.NewCommitArena()
	var enr = enricher.NewCommitEnricher(
		forest.NewCheckoutFactory(fam, storage),
		fam.Invert,
		arena,
		retrievedSettings.MaxPendingCommits,
		logger,
	)

	return &Session{
		Settings: retrievedSettings,
		Logger:   logger,
		Kinds:    kinds,
		Family:   fam,
		Forest:   storage,
		Arena:    arena,
		Enricher: enr,
	}, nil
}

// Close releases the enricher's checkouts.
func (s *Session) Close() error {
	return s.Enricher.Dispose()
}
