package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	_ "menuflow/docs"
	"menuflow/pkg/cart"
	cartredis "menuflow/pkg/cart/redis"
	"menuflow/pkg/catalog"
	catalogpg "menuflow/pkg/catalog/postgres"
	"menuflow/pkg/logger"
	"menuflow/pkg/metrics"
	"menuflow/pkg/notify"
	"menuflow/pkg/order"
	orderpg "menuflow/pkg/order/postgres"
	"menuflow/pkg/otel"
)

var (
	redisClient *redis.Client
	catalogRepo catalog.Repository
	orderRepo   order.Repository
	cartStore   cart.Store
	finalizer   *order.Finalizer
	mailer      *notify.Mailer
	log         *logger.Logger
	tracer      trace.Tracer
	sessionTTL  time.Duration
)

// @title MenuFlow API
// @version 1.0
// @description Restaurant menu, cart and order API
// @host localhost:8443
// @BasePath /
func main() {
	_ = godotenv.Load()

	log = logger.New(os.Stdout, logger.LevelInfo, "menuflow", otel.GetTraceID)
	defer log.Sync()
	ctx := context.Background()

	sessionTTL = time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Error(ctx, "parse SESSION_TTL", "error", err)
			os.Exit(1)
		}
		sessionTTL = d
	}

	if host := os.Getenv("OTEL_HOST"); host != "" {
		tp, shutdown, err := otel.InitTracing(log, otel.Config{ServiceName: "menuflow", Host: host, Probability: 1.0})
		if err != nil {
			log.Error(ctx, "init tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
		tracer = tp.Tracer("menuflow")
	}

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Error(ctx, "db connect", "error", err)
		os.Exit(1)
	}
	if err := catalogpg.EnsureSchema(ctx, db); err != nil {
		log.Error(ctx, "catalog schema", "error", err)
		os.Exit(1)
	}
	if err := orderpg.EnsureSchema(ctx, db); err != nil {
		log.Error(ctx, "order schema", "error", err)
		os.Exit(1)
	}
	catalogRepo = catalogpg.New(db)
	orderRepo = orderpg.New(db)

	redisClient = redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})
	cartStore = cartredis.New(redisClient, sessionTTL)
	finalizer = order.NewFinalizer(orderRepo, cartStore)

	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		mailer = notify.New(key, "MenuFlow", os.Getenv("EMAIL_SENDER"))
	}

	srvMetrics := metrics.NewServerMetrics("api")

	r := mux.NewRouter()
	r.Use(traceMiddleware)
	r.Use(metricsMiddleware(srvMetrics))
	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)

	menu := r.PathPrefix("/menu").Subrouter()
	menu.HandleFunc("/categories", listCategoriesHandler).Methods(http.MethodGet)
	menu.HandleFunc("/products", listProductsHandler).Methods(http.MethodGet)
	menu.HandleFunc("/products/{id}", getProductHandler).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := r.PathPrefix("/").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/cart", getCartHandler).Methods(http.MethodGet)
	api.HandleFunc("/cart", clearCartHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", addCartItemHandler).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{productID}", setCartItemHandler).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{productID}", removeCartItemHandler).Methods(http.MethodDelete)
	api.HandleFunc("/checkout", checkoutHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders", listOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", getOrderHandler).Methods(http.MethodGet)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8443"
	}
	log.Info(ctx, "listening", "addr", addr)

	certFile, keyFile := os.Getenv("CERT_FILE"), os.Getenv("KEY_FILE")
	if certFile != "" && keyFile != "" {
		err = http.ListenAndServeTLS(addr, certFile, keyFile, r)
	} else {
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		log.Error(ctx, "server closed", "error", err)
	}
}

// session is the per-session record stored in redis at login.
type session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

type ctxKey int

const (
	sessionKey ctxKey = iota + 1
	sessionIDKey
)

func sessionFrom(ctx context.Context) (session, string) {
	s, _ := ctx.Value(sessionKey).(session)
	sid, _ := ctx.Value(sessionIDKey).(string)
	return s, sid
}

// authMiddleware ensures a valid session exists and attaches it to the context.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		data, err := redisClient.Get(r.Context(), "session:"+c.Value).Bytes()
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var s session
		if err := json.Unmarshal(data, &s); err != nil || s.UserID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, s)
		ctx = context.WithValue(ctx, sessionIDKey, c.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tracer == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := otel.InjectTracing(r.Context(), tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(m *metrics.ServerMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.Observe(route, rec.status, time.Since(start))
		})
	}
}
