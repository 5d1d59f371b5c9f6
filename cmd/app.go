package cmd

import (
	"context"
	"errors"

	"github.com/ginjaninja78/pallet-manifest/internal/importer"
	"github.com/ginjaninja78/pallet-manifest/internal/ingest"
	"github.com/ginjaninja78/pallet-manifest/internal/kvstore"
	"github.com/ginjaninja78/pallet-manifest/internal/session"
	"github.com/ginjaninja78/pallet-manifest/internal/settings"
	"github.com/ginjaninja78/pallet-manifest/internal/validation"
)

// errNoImport is returned by commands that need a previous import.
var errNoImport = errors.New("no import available; run 'manifest import <file>' first")

// app wires the storage, session, settings and importer for one command run.
type app struct {
	store    kvstore.Store
	importer *importer.Importer
}

// newApp opens the configured store and restores settings and the last
// import from it.
func newApp(ctx context.Context) (*app, error) {
	store, err := kvstore.Open(appConfig.Storage)
	if err != nil {
		return nil, err
	}

	mgr := settings.NewManager(store, logger)
	mgr.Hydrate(ctx)

	sess := session.New(store, logger)
	sess.Rehydrate(ctx)

	im := importer.New(
		ingest.NewReader(appConfig.CSV, logger),
		sess,
		mgr,
		importerOptions(),
		logger,
	)

	return &app{store: store, importer: im}, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.store.Close()
}

func importerOptions() importer.Options {
	return importer.Options{
		OverweightIsError:     overweightIsError,
		TreatWarningsAsErrors: strict,
	}
}

func validationOptions(maxPalletWeightKg float64) validation.ValidationOptions {
	return validation.ValidationOptions{
		MaxPalletWeightKg:     maxPalletWeightKg,
		OverweightIsError:     overweightIsError,
		TreatWarningsAsErrors: strict,
	}
}
