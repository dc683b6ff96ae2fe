// Command server runs the record-communities API. Wiring only; business
// logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"archiva/internal/audit"
	communitystore "archiva/internal/communities/store"
	"archiva/internal/identity"
	"archiva/internal/jwttoken"
	"archiva/internal/platform/config"
	"archiva/internal/platform/httpserver"
	"archiva/internal/platform/kafka"
	"archiva/internal/platform/logger"
	"archiva/internal/platform/postgres"
	platformredis "archiva/internal/platform/redis"
	"archiva/internal/records/communities"
	cchandler "archiva/internal/records/communities/handler"
	ccmetrics "archiva/internal/records/communities/metrics"
	"archiva/internal/records/indexer"
	recordstore "archiva/internal/records/store"
	requesthandler "archiva/internal/requests/handler"
	requestmodels "archiva/internal/requests/models"
	requestservice "archiva/internal/requests/service"
	requeststore "archiva/internal/requests/store"
	httptransport "archiva/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. Without a DSN the service runs on memory stores (demo mode).
	var (
		records  communities.RecordStore
		comms    communitystore.Store
		requests requestservice.Store
		txRunner communities.TxRunner = communities.PassthroughTx{}
	)
	if cfg.PostgresDSN != "" {
		pool, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		records = recordstore.NewPostgresStore(pool)
		comms = communitystore.NewPostgresStore(pool)
		requests = requeststore.NewPostgresStore(pool)
		txRunner = postgres.NewTxRunner(pool)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		records = recordstore.NewInMemory()
		comms = communitystore.NewInMemory()
		requests = requeststore.NewInMemory()
	}

	// Optional Redis read-through cache for community lookups.
	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		comms = communitystore.NewCached(comms, rdb.Client, cfg.CommunityCacheTTL, log)
	}

	// Optional Kafka for audit trail and index feed.
	auditSink := audit.Sink(audit.NewMemorySink())
	indexSink := indexer.Sink(indexer.NewMemorySink())
	kafkaClient, err := kafka.New(cfg.Kafka)
	if err != nil {
		log.Error("connect kafka", "error", err)
		os.Exit(1)
	}
	if kafkaClient != nil {
		defer kafkaClient.Close()
		if err := kafka.EnsureTopics(ctx, kafkaClient, cfg.Kafka.AuditTopic, cfg.Kafka.IndexTopic); err != nil {
			log.Error("bootstrap kafka topics", "error", err)
			os.Exit(1)
		}
		auditSink = audit.NewKafkaSink(kafkaClient, cfg.Kafka.AuditTopic)
		indexSink = indexer.NewKafkaSink(kafkaClient, cfg.Kafka.IndexTopic)
	} else {
		log.Warn("no kafka brokers configured, audit and index events stay in memory")
	}

	auditPub := audit.NewPublisher(256, log)
	indexQueue := indexer.NewQueue(1024, log)

	requestSvc := requestservice.New(requests,
		requestservice.WithLogger(log),
		requestservice.WithAuditPublisher(auditPub),
		requestservice.WithTxRunner(txRunner),
		requestservice.WithAcceptHook(acceptIntoRecord(records, auditPub, indexQueue)),
		requestservice.WithCommunityStore(comms),
	)
	svc := communities.New(records, comms, requestSvc, txRunner,
		communities.WithLogger(log),
		communities.WithMetrics(ccmetrics.New()),
		communities.WithAuditPublisher(auditPub),
		communities.WithIndexQueue(indexQueue),
		communities.WithMaxBatch(cfg.MaxCommunitiesPerBatch),
	)

	jwtSvc := jwttoken.NewJWTService(cfg.JWTSigningKey, "archiva", "archiva-api")
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		TokenValidator: jwttoken.NewMiddlewareAdapter(jwtSvc),
		Handlers: []httptransport.Registrar{
			cchandler.New(svc, log),
			requesthandler.New(requestSvc, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCancellation(audit.NewWorker(auditSink, auditPub.Inbox(), log).Run(gctx))
	})
	g.Go(func() error {
		return ignoreCancellation(indexer.NewWorker(indexSink, indexQueue.Ops(), log).Run(gctx))
	})
	g.Go(func() error {
		log.Info("starting archiva server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// acceptIntoRecord applies an accepted inclusion request: the record joins
// the community inside the accepting unit of work.
func acceptIntoRecord(records communities.RecordStore, pub *audit.Publisher, queue *indexer.Queue) requestservice.AcceptHook {
	return func(ctx context.Context, actor identity.Identity, req *requestmodels.InclusionRequest) error {
		rec, err := records.Resolve(ctx, req.RecordID)
		if err != nil {
			return err
		}
		if rec.HasCommunity(req.CommunityID) {
			return nil
		}
		if err := rec.Parent.Communities.Add(req.CommunityID, false); err != nil {
			return err
		}
		if err := records.Save(ctx, rec); err != nil {
			return err
		}
		pub.CommunitiesAdded(ctx, req.RecordID, req.CommunityID, actor)
		queue.Enqueue(ctx, req.RecordID)
		return nil
	}
}

func ignoreCancellation(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
