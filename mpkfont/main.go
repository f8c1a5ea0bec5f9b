package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"cloud.google.com/go/profiler"
	"github.com/davecgh/go-spew/spew"
	"github.com/jmoiron/sqlx"
	"github.com/tommy351/zap-stackdriver"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"mpkfont/pkg/bundle"
	"mpkfont/pkg/config"
	"mpkfont/pkg/fontpatch"
)

var (
	// This will be overwritten via ldflags.
	mpkfontVersion  string
	mpkfontRevision string
)

var (
	conf config.Config

	dump     = flag.Bool("dump", false, "dump scanned sites with spew")
	cpu      = flag.Int("cpu", 2, "setting GOMAXPROCS")
	cprof    = flag.Int("cprof", 0, "0: disable cloud profiler, 1: enable cloud profiler, 2: also enable mtx profile")
	prodlog  = flag.Bool("prodlog", false, "use production logging mode")
	loglevel = flag.Int("v", 2, "logging level. 1:error, 2:info, 3:debug")
	fontName = flag.String("font", "", "font file name written into the package (default $MPKFONT_FONT_NAME)")
	publish  = flag.Bool("publish", false, "upload the bundle to $MPKFONT_GCS_BUCKET")
	nohist   = flag.Bool("nohistory", false, "do not read or write the patch history")
)

var (
	logger *zap.Logger
)

const (
	exitOK = iota
	exitUsage
	exitPatchFailed
)

func printHeader() {
	fmt.Println("   ====================================================")
	fmt.Println("    mpkfont - font reference patcher for Resources.mpk")
	fmt.Printf("    Version: %v (%v)\n", mpkfontVersion, mpkfontRevision)
	fmt.Println("   ====================================================")
}

func printUsage() {
	fmt.Print(`
Usage: mpkfont <Flags...> [patch, bundle, batch, scan, initdb, history]

  patch IN OUT: Patch a resource package.
    OUT is written only when at least one font reference was rewritten.

  bundle IN FONT OUT.zip: Patch a resource package and build the archive
    users unpack into the game directory.
    title.ttf, art.ttf and Fonts.xml are taken from $MPKFONT_ASSETS_DIR if present.

  batch OUTDIR IN...: Patch many resource packages concurrently.

  scan IN: Print the font references found in a resource package.

  initdb: Initialize the history database.
    Note that if the database file already exists it will be permanently deleted.

  history: Print recent patch history.

Flags:

`)
	flag.PrintDefaults()
}

func loadConfig() {
	c, err := config.Parse()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	if *fontName != "" {
		c.FontName = *fontName
	}
	logger.Info("config loaded", zap.Any("config", c))
	conf = c
}

func prepareOption(command string) {
	runtime.GOMAXPROCS(*cpu)

	// google cloud profiler
	if 1 <= *cprof {
		cfg := profiler.Config{
			Service:        fmt.Sprintf("mpkfont-%s", command),
			ServiceVersion: mpkfontVersion,
			ProjectID:      conf.GCPProjectID,
		}
		if 2 <= *cprof {
			cfg.MutexProfiling = true
		}
		var opts []option.ClientOption
		if conf.GCPKeyPath != "" {
			opts = append(opts, option.WithCredentialsFile(conf.GCPKeyPath))
		}
		if err := profiler.Start(cfg, opts...); err != nil {
			logger.Error("failed to start cloud profiler", zap.Error(err), zap.Any("cfg", cfg))
		} else {
			logger.Info("profiler started")
		}
	}
}

var defaulthistory History

// getHistory returns nil when history is disabled.
func getHistory() History {
	return defaulthistory
}

func prepareDB() {
	if *nohist || conf.DBName == "" {
		return
	}
	conn, err := sqlx.Open("sqlite3", conf.DBName)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	conn.SetMaxOpenConns(1)

	h := SQLiteHistory{DB: conn}
	if err := h.Init(); err != nil {
		logger.Fatal("failed to init database", zap.Error(err))
	}
	defaulthistory = h
}

func prepareLogger() {
	var err error
	var zapConfig zap.Config

	if *prodlog {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig = stackdriver.EncoderConfig
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Encoding = "console"
	}

	switch *loglevel {
	case 0, 1:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case 2:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case 3:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err = zapConfig.Build()
	if err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}

	if *prodlog {
		logger = logger.With(
			zap.String("mpkfont_version", mpkfontVersion),
			zap.String("mpkfont_revision", mpkfontRevision))
	}
}

// reportFailure logs err the way a user needs to see it and returns the exit code.
func reportFailure(err error) int {
	status := fontpatch.StatusOf(err)
	switch status {
	case fontpatch.AlreadyPatched, fontpatch.NoDataFound, fontpatch.NoOpApplied:
		logger.Warn("patch not applied", zap.Stringer("status", status), zap.Error(err))
	default:
		logger.Error("patch failed", zap.Stringer("status", status), zap.Error(err))
	}
	return exitPatchFailed
}

func mainPatch(args []string) int {
	if len(args) != 2 {
		printUsage()
		return exitUsage
	}
	res, err := patchFile(args[0], args[1], conf.FontName)
	if err != nil {
		return reportFailure(err)
	}
	fmt.Println(res.Outcome.Message)
	return exitOK
}

func mainBundle(ctx context.Context, args []string) int {
	if len(args) != 3 {
		printUsage()
		return exitUsage
	}
	src, fontPath, dst := args[0], args[1], args[2]

	font, err := os.ReadFile(fontPath)
	if err != nil {
		return reportFailure(&fontpatch.Error{Status: fontpatch.InputUnreadable, Msg: "failed to read " + fontPath, Err: err})
	}
	fullName, err := bundle.ValidateFont(font)
	if err != nil {
		return reportFailure(&fontpatch.Error{Status: fontpatch.InputUnreadable, Msg: fontPath, Err: err})
	}
	logger.Info("font loaded", zap.String("path", fontPath), zap.String("full_name", fullName))

	// The font is always shipped as normal.ttf, so that is the name written into the package.
	res, err := patchPackage(src, bundle.NormalFontFile)
	if err != nil {
		return reportFailure(err)
	}

	assetsDir, err := bundle.ResolveAssetsDir(conf.AssetsDir, conf.ClientVersion)
	if err != nil {
		logger.Warn("assets unavailable, using the supplied font for every role", zap.Error(err))
		assetsDir = ""
	}
	logger.Debug("assets resolved", zap.String("dir", assetsDir))

	err = bundle.WriteFile(dst, &bundle.Bundle{
		PackageExt: strings.TrimPrefix(filepath.Ext(src), "."),
		Package:    res.Patched,
		Font:       font,
		AssetsDir:  assetsDir,
	})
	if err != nil {
		return reportFailure(&fontpatch.Error{Status: fontpatch.OutputWriteFailed, Msg: "failed to write " + dst, Err: err})
	}
	logger.Info("bundle written", zap.String("path", dst))
	fmt.Println(res.Outcome.Message)

	if *publish {
		url, err := publishBundle(ctx, dst)
		if err != nil {
			logger.Error("failed to publish bundle", zap.Error(err))
			return exitPatchFailed
		}
		fmt.Println(url)
	}
	return exitOK
}

func mainBatch(ctx context.Context, args []string) int {
	if len(args) < 2 {
		printUsage()
		return exitUsage
	}
	results, err := patchBatch(ctx, args[0], args[1:], conf.FontName, conf.Workers)
	if err != nil {
		logger.Error("batch aborted", zap.Error(err))
		return exitPatchFailed
	}

	code := exitOK
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s\t%s\t%v\n", r.Input, r.Status(), r.Err)
			code = exitPatchFailed
			continue
		}
		fmt.Printf("%s\t%s\t%s\n", r.Input, r.Status(), r.Result.Outcome.Message)
	}
	return code
}

func mainScan(args []string) int {
	if len(args) != 1 {
		printUsage()
		return exitUsage
	}
	bin, err := os.ReadFile(args[0])
	if err != nil {
		return reportFailure(&fontpatch.Error{Status: fontpatch.InputUnreadable, Msg: "failed to read " + args[0], Err: err})
	}

	sites := fontpatch.Scan(bin)
	if *dump {
		dumper := spew.NewDefaultConfig()
		dumper.MaxDepth = 3
		dumper.DisableMethods = true
		dumper.DisablePointerAddresses = true
		fmt.Print(dumper.Sdump(sites))
		return exitOK
	}
	for _, s := range sites {
		switch s.Kind {
		case fontpatch.RawString:
			fmt.Printf("0x%08x\t%s\t%s\n", s.Offset, s.Kind, s.LegacyName)
		case fontpatch.XMLBlock:
			fmt.Printf("0x%08x\t%s\t%d bytes\n", s.Offset, s.Kind, s.Length)
		}
	}
	fmt.Printf("%d sites\n", len(sites))
	return exitOK
}

func mainHistory() int {
	h := getHistory()
	if h == nil {
		logger.Error("history is disabled")
		return exitUsage
	}
	records, err := h.GetRecentPatchRecords(20)
	if err != nil {
		logger.Error("failed to read history", zap.Error(err))
		return exitPatchFailed
	}
	for _, r := range records {
		fmt.Printf("%s\t%s\t%s\t%d\t%s\n", r.Created.Format("2006-01-02 15:04:05"), r.InputName, r.Status, r.Replacements, r.InputMD5)
	}
	return exitOK
}

func main() {
	printHeader()
	flag.Parse()

	prepareLogger()
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(exitUsage)
	}

	loadConfig()

	command := args[0]
	prepareOption(command)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := exitOK
	switch command {
	case "patch":
		prepareDB()
		code = mainPatch(args[1:])
	case "bundle":
		prepareDB()
		code = mainBundle(ctx, args[1:])
	case "batch":
		prepareDB()
		code = mainBatch(ctx, args[1:])
	case "scan":
		code = mainScan(args[1:])
	case "initdb":
		os.Remove(conf.DBName)
		prepareDB()
		if getHistory() == nil {
			logger.Error("history is disabled")
			code = exitUsage
		}
	case "history":
		prepareDB()
		code = mainHistory()
	default:
		printUsage()
		code = exitUsage
	}

	logger.Sync()
	os.Exit(code)
}
