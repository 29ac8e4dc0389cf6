// Command stepflow runs workflow packages from the command line:
//
//	stepflow run <package> <workflow>   run one workflow and exit
//	stepflow serve                      run scheduled jobs until interrupted
//	stepflow list <package> <workflow>  print a workflow's steps
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ludere/stepflow/internal/engine"
	"github.com/ludere/stepflow/internal/expressions"
	"github.com/ludere/stepflow/internal/flowctx"
	"github.com/ludere/stepflow/internal/logging"
	"github.com/ludere/stepflow/internal/scheduler"
	"github.com/ludere/stepflow/internal/services"
	"github.com/ludere/stepflow/internal/steps"
	"github.com/ludere/stepflow/internal/store"
	"github.com/ludere/stepflow/internal/validation"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "stepflow:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stepflow <run|serve|list> [args]")
	}

	cfg := loadConfig()
	logger := newLogger(cfg)

	rt, err := buildRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "run":
		if len(args) != 3 {
			return fmt.Errorf("usage: stepflow run <package> <workflow>")
		}
		return rt.runOnce(ctx, args[1], args[2])
	case "serve":
		return rt.serve(ctx, cfg)
	case "list":
		if len(args) != 3 {
			return fmt.Errorf("usage: stepflow list <package> <workflow>")
		}
		return rt.list(ctx, args[1], args[2])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newLogger(cfg Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if cfg.LogFormat == "json" {
		inner = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		inner = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(logging.NewCorrelationHandler(inner))
}

// runtime holds the wired interpreter.
type runtime struct {
	logger   *slog.Logger
	executor *engine.Executor
	resolver *engine.Resolver
	recorder store.Recorder
}

func buildRuntime(cfg Config, logger *slog.Logger) (*runtime, error) {
	validator, err := validation.NewWorkflowValidator()
	if err != nil {
		return nil, fmt.Errorf("compile workflow schema: %w", err)
	}
	celEngine, err := expressions.NewCELEngine()
	if err != nil {
		return nil, err
	}

	var recorder store.Recorder
	if cfg.DBPath != "" {
		rec, err := store.NewLibSQLRecorder("file:" + cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open flight recorder: %w", err)
		}
		recorder = rec
	}

	parser := engine.NewParser(validator)
	resolver := engine.NewResolver(parser, cfg.PackageDirs...)

	registry := steps.NewRegistry()
	executor := engine.NewExecutor(registry, logger, recorder)

	err = steps.RegisterBuiltins(registry, steps.Deps{
		Logger:  logger,
		Runner:  executor,
		Loader:  resolver,
		Audio:   services.NewMemoryAudio(),
		Physics: services.NewMemoryPhysics(),
		Input:   services.NewMemoryInput(),
		VFX:     services.NewMemoryVFX(),
		Expr:    expressions.NewExprEngine(),
		CEL:     celEngine,
		JQ:      expressions.NewGoJQEngine(),
	})
	if err != nil {
		return nil, fmt.Errorf("register builtin steps: %w", err)
	}

	return &runtime{logger: logger, executor: executor, resolver: resolver, recorder: recorder}, nil
}

func (rt *runtime) close() {
	if rt.recorder != nil {
		_ = rt.recorder.Close()
	}
}

func (rt *runtime) runOnce(ctx context.Context, pkg, workflow string) error {
	def, err := rt.resolver.Load(ctx, pkg, workflow)
	if err != nil {
		return err
	}
	flow := flowctx.New()
	runID, err := rt.executor.Run(ctx, def, flow)
	if err != nil {
		return err
	}

	fmt.Println("run", runID, "completed")
	for _, key := range flow.Keys() {
		v, _ := flow.Lookup(key)
		fmt.Printf("  %s = %s\n", key, v)
	}
	return nil
}

func (rt *runtime) serve(ctx context.Context, cfg Config) error {
	jobs := cfg.schedulerJobs()
	if len(jobs) == 0 {
		return fmt.Errorf("no scheduled jobs configured")
	}
	sched, err := scheduler.New(rt.executor, rt.resolver, rt.logger, jobs)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return sched.Stop()
}

func (rt *runtime) list(ctx context.Context, pkg, workflow string) error {
	def, err := rt.resolver.Load(ctx, pkg, workflow)
	if err != nil {
		return err
	}
	fmt.Printf("%s/%s (%d steps)\n", def.Package, def.Name, len(def.Steps))
	for _, st := range def.Steps {
		fmt.Printf("  %-24s %s\n", st.ID, st.Plugin)
	}
	return nil
}
