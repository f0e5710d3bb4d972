// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/advisorydelivery"
	"github.com/kifaa/ledger-core/internal/advisoryrepo"
	"github.com/kifaa/ledger-core/internal/advisoryservice"
	"github.com/kifaa/ledger-core/internal/ledgerdelivery"
	"github.com/kifaa/ledger-core/internal/ledgerrepo"
	"github.com/kifaa/ledger-core/internal/ledgerservice"
	"github.com/kifaa/ledger-core/internal/loandelivery"
	"github.com/kifaa/ledger-core/internal/loanrepo"
	"github.com/kifaa/ledger-core/internal/loanservice"
	"github.com/kifaa/ledger-core/internal/middleware"
	"github.com/kifaa/ledger-core/internal/productrepo"
	"github.com/kifaa/ledger-core/internal/scorecache"
	"github.com/kifaa/ledger-core/internal/scoredelivery"
	"github.com/kifaa/ledger-core/internal/scoreservice"
	"github.com/kifaa/ledger-core/internal/transactionrepo"
	"github.com/kifaa/ledger-core/internal/walletdelivery"
	"github.com/kifaa/ledger-core/internal/walletrepo"
	"github.com/kifaa/ledger-core/internal/walletservice"
	"github.com/kifaa/ledger-core/pkg/configpkg"
	"github.com/kifaa/ledger-core/pkg/currencypkg"
	"github.com/kifaa/ledger-core/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, rdb *redis.Client, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	walletRepo := walletrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)
	productRepo := productrepo.NewRepoPGS(conn)
	loanRepo := loanrepo.NewRepoPGS(conn)
	advisoryRepo := advisoryrepo.NewRepoPGS(conn)
	scoreCache := scorecache.New(rdb, config.ScoreCacheTTL)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	walletService := walletservice.New(walletRepo)
	ledgerService := ledgerservice.New(ledgerRepo, transactionRepo, walletService)
	scoreService := scoreservice.New(transactionRepo, loanRepo, advisoryRepo, scoreCache)
	loanService := loanservice.New(loanRepo, productRepo, scoreService, config.MissedPaymentThreshold)
	advisoryService := advisoryservice.New(advisoryRepo, scoreService)

	walletHandler := walletdelivery.NewHandler(walletService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService)
	loanHandler := loandelivery.NewHandler(loanService)
	scoreHandler := scoredelivery.NewHandler(scoreService)
	advisoryHandler := advisorydelivery.NewHandler(advisoryService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/wallets", walletHandler.Create)
	authRoutes.GET("/wallets", walletHandler.List)

	authRoutes.POST("/wallets/deposit", ledgerHandler.Deposit)
	authRoutes.POST("/wallets/withdraw", ledgerHandler.Withdraw)
	authRoutes.POST("/transfers", ledgerHandler.Transfer)
	authRoutes.GET("/transactions", ledgerHandler.ListTransactions)

	authRoutes.GET("/products", loanHandler.Products)
	authRoutes.POST("/loans", loanHandler.Apply)
	authRoutes.GET("/loans", loanHandler.List)
	authRoutes.POST("/loans/:id/approve", loanHandler.Approve)
	authRoutes.POST("/loans/:id/reject", loanHandler.Reject)
	authRoutes.POST("/loans/:id/disburse", loanHandler.Disburse)
	authRoutes.POST("/loans/:id/repayments", loanHandler.Repay)
	authRoutes.POST("/loans/:id/missed-payments", loanHandler.MissedPayment)

	authRoutes.GET("/credit-score", scoreHandler.Get)
	authRoutes.POST("/credit-score/refresh", scoreHandler.Refresh)

	authRoutes.GET("/improvement-plan", advisoryHandler.Plan)
	authRoutes.POST("/improvement-plan/actions/:id/toggle", advisoryHandler.Toggle)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
