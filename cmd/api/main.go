package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	_ "cartflow/docs"
	"cartflow/pkg/cart"
	"cartflow/pkg/cartapi"
	pg "cartflow/pkg/cartapi/postgres"
	"cartflow/pkg/logger"
	"cartflow/pkg/otel"
)

var (
	redisClient *redis.Client
	repo        cartapi.Repository
	log         *logger.Logger
	tracer      trace.Tracer
)

type ctxKey int

const userKey ctxKey = 1

const schema = `CREATE TABLE IF NOT EXISTS cart_lines (
	pos        BIGSERIAL PRIMARY KEY,
	id         TEXT UNIQUE NOT NULL,
	owner      TEXT NOT NULL,
	name       TEXT NOT NULL,
	unit_price BIGINT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	images     TEXT[] NOT NULL DEFAULT '{}',
	stock      INT NOT NULL,
	quantity   INT NOT NULL
)`

// @title Cartflow API
// @version 1.0
// @description Marketplace cart synchronization API
// @host localhost:8443
// @BasePath /
func main() {
	log = logger.New(os.Stdout, logger.LevelInfo, "cartflow", otel.GetTraceID)
	tp, shutdown, err := otel.InitTracing(log, otel.Config{ServiceName: "cartflow", Probability: 1.0})
	if err != nil {
		log.Error(context.Background(), "init tracing", "error", err)
		return
	}
	defer shutdown(context.Background())
	tracer = tp.Tracer("cartflow")

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Error(context.Background(), "db connect", "error", err)
		os.Exit(1)
	}
	if _, err := db.Exec(schema); err != nil {
		log.Error(context.Background(), "create table", "error", err)
		os.Exit(1)
	}
	repo = pg.New(db)

	redisClient = redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})

	r := mux.NewRouter()
	r.Use(traceMiddleware)
	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)

	api := r.PathPrefix("/cart").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("", getCartHandler).Methods(http.MethodGet)
	api.HandleFunc("", clearCartHandler).Methods(http.MethodDelete)
	api.HandleFunc("/items", addItemHandler).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", updateItemHandler).Methods(http.MethodPatch)
	api.HandleFunc("/items/{id}", deleteItemHandler).Methods(http.MethodDelete)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	log.Info(context.Background(), "listening", "addr", ":8443")
	if err := http.ListenAndServeTLS(":8443", "certs/server.crt", "certs/server.key", r); err != nil {
		log.Error(context.Background(), "server closed", "error", err)
	}
}

// loginHandler handles buyer login and session creation.
// @Summary Login
// @Description Authenticates the buyer and sets a session cookie
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "invalid_credentials", "invalid credentials")
		return
	}
	sid := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := redisClient.Set(ctx, "session:"+sid, req.Username, time.Hour).Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "session_error", "session error")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(time.Hour), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// authMiddleware ensures a valid session exists and resolves the cart owner.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		user, err := redisClient.Get(r.Context(), "session:"+c.Value).Result()
		if err != nil || user == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "session expired")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getCartHandler returns the buyer's cart lines.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cartBody
// @Security ApiKeyAuth
// @Router /cart [get]
func getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	items, err := repo.List(ctx, owner(ctx))
	if err != nil {
		log.Error(ctx, "list cart", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if items == nil {
		items = []cart.LineItem{}
	}
	writeJSON(w, http.StatusOK, cartBody{Items: items})
}

// addItemHandler adds a product line to the cart.
// @Summary Add cart line
// @Accept json
// @Produce json
// @Param item body cart.LineItem true "Line item"
// @Success 201 {object} cart.LineItem
// @Security ApiKeyAuth
// @Router /cart/items [post]
func addItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addItemHandler")
	defer span.End()

	var li cart.LineItem
	if err := json.NewDecoder(r.Body).Decode(&li); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if li.Quantity < 1 {
		li.Quantity = 1
	}
	created, err := repo.Add(ctx, owner(ctx), li)
	if err != nil {
		writeRepoError(ctx, w, "add line", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// updateItemHandler sets one line's quantity.
// @Summary Update cart line quantity
// @Accept json
// @Produce json
// @Param id path string true "Line item ID"
// @Param body body quantityBody true "New quantity"
// @Success 200 {object} cart.LineItem
// @Security ApiKeyAuth
// @Router /cart/items/{id} [patch]
func updateItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateItemHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	var body quantityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if body.Quantity < 0 {
		writeError(w, http.StatusUnprocessableEntity, "invalid_quantity", "quantity must not be negative")
		return
	}
	li, err := repo.SetQuantity(ctx, owner(ctx), id, body.Quantity)
	if err != nil {
		writeRepoError(ctx, w, "update line", err)
		return
	}
	writeJSON(w, http.StatusOK, li)
}

// deleteItemHandler removes one line.
// @Summary Delete cart line
// @Param id path string true "Line item ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /cart/items/{id} [delete]
func deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deleteItemHandler")
	defer span.End()

	id := mux.Vars(r)["id"]
	if err := repo.Delete(ctx, owner(ctx), id); err != nil {
		writeRepoError(ctx, w, "delete line", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearCartHandler removes every line.
// @Summary Clear cart
// @Success 204
// @Security ApiKeyAuth
// @Router /cart [delete]
func clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "clearCartHandler")
	defer span.End()

	if err := repo.Clear(ctx, owner(ctx)); err != nil {
		writeRepoError(ctx, w, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func owner(ctx context.Context) string {
	user, _ := ctx.Value(userKey).(string)
	return user
}

func writeRepoError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, cartapi.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "cart line not found")
	case errors.Is(err, cartapi.ErrStock):
		writeError(w, http.StatusConflict, "stock_exceeded", "quantity exceeds available stock")
	default:
		log.Error(ctx, op, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// cartBody wraps the line items of a cart response.
type cartBody struct {
	Items []cart.LineItem `json:"items"`
}

// quantityBody is the PATCH payload for a cart line.
type quantityBody struct {
	Quantity int `json:"quantity"`
}

// errorBody is the error envelope returned by every failing endpoint.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
