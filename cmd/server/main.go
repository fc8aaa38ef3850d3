package main

import (
	"context"
	"log"
	"time"

	memorycache "lifeline/internal/adapter/cache/memory"
	genaigen "lifeline/internal/adapter/generator/genai"
	"lifeline/internal/adapter/generator/scripted"
	httpadapter "lifeline/internal/adapter/http"
	metricsinmem "lifeline/internal/adapter/metrics/inmemory"
	gormrepo "lifeline/internal/adapter/repo/gorm"
	memoryrepo "lifeline/internal/adapter/repo/memory"
	"lifeline/internal/app/birth"
	"lifeline/internal/app/ports"
	"lifeline/internal/app/replay"
	"lifeline/internal/app/snapshot"
	"lifeline/internal/app/turn"
	"lifeline/internal/config"
	"lifeline/internal/domain/life"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tuning := mustLoadTuning(cfg)
	stateRepo, turnRepo, eventRepo, txManager := mustBuildRepos(cfg)
	generator := mustBuildGenerator(cfg, tuning)
	cache := memorycache.New(cfg.PrefetchTTL, cfg.PrefetchCapacity, time.Now)
	kpiRecorder := metricsinmem.NewRecorder()

	h := httpadapter.Handler{
		BirthUC: birth.UseCase{
			TxManager: txManager,
			StateRepo: stateRepo,
			EventRepo: eventRepo,
			Generator: generator,
			Tuning:    tuning,
			Now:       time.Now,
		},
		TurnUC: turn.UseCase{
			TxManager: txManager,
			StateRepo: stateRepo,
			TurnRepo:  turnRepo,
			EventRepo: eventRepo,
			Generator: generator,
			Cache:     cache,
			Metrics:   kpiRecorder,
			Tuning:    tuning,
			Now:       time.Now,
		},
		SnapshotUC: snapshot.UseCase{StateRepo: stateRepo},
		ReplayUC:   replay.UseCase{Events: eventRepo},
		KPI:        kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.Addr))
	h.RegisterRoutes(s)

	log.Printf("lifeline server listening on %s", cfg.Addr)
	s.Spin()
}

func mustLoadTuning(cfg config.Config) life.Tuning {
	if cfg.TuningPath == "" {
		return life.DefaultTuning()
	}
	tuning, err := life.LoadTuning(cfg.TuningPath)
	if err != nil {
		log.Fatalf("load tuning %s: %v", cfg.TuningPath, err)
	}
	return tuning
}

func mustBuildRepos(cfg config.Config) (ports.RunStateRepository, ports.TurnExecutionRepository, ports.EventRepository, ports.TxManager) {
	if cfg.DBDSN == "" {
		log.Println("LIFELINE_DB_DSN not set, using in-memory repositories")
		store := memoryrepo.NewStore()
		return memoryrepo.NewRunStateRepo(store), memoryrepo.NewTurnExecutionRepo(store), memoryrepo.NewEventRepo(store), memoryrepo.NewTxManager(store)
	}

	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if cfg.AutoMigrate {
		if err := gormrepo.AutoMigrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	return gormrepo.NewRunStateRepo(db), gormrepo.NewTurnExecutionRepo(db), gormrepo.NewEventRepo(db), gormrepo.NewTxManager(db)
}

func mustBuildGenerator(cfg config.Config, tuning life.Tuning) ports.ScenarioGenerator {
	if cfg.GenAIAPIKey == "" {
		log.Println("LIFELINE_GENAI_API_KEY not set, using scripted generator")
		return scripted.Generator{}
	}
	gen, err := genaigen.New(context.Background(), genaigen.Config{
		APIKey:         cfg.GenAIAPIKey,
		Model:          cfg.GenAIModel,
		MaxEffectDelta: tuning.MaxEffectDelta,
	})
	if err != nil {
		log.Fatalf("genai generator: %v", err)
	}
	return gen
}
