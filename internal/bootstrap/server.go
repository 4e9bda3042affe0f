package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dcastano/aeroops/api"
	"github.com/dcastano/aeroops/config"
	"github.com/dcastano/aeroops/internal/service/auth"
	"github.com/dcastano/aeroops/internal/service/catalog"
	"github.com/dcastano/aeroops/internal/service/flights"
	"github.com/dcastano/aeroops/internal/service/trips"
	"github.com/dcastano/aeroops/internal/token"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services groups everything the HTTP surface needs.
type Services struct {
	Auth     auth.AuthUseCase
	Flights  flights.FlightUseCase
	Trips    trips.TripUseCase
	Airports *catalog.AirportService
	Pilots   *catalog.PilotService
	Fares    *catalog.FareService
	Cards    *catalog.CardService
	Signer   *token.JWTSigner
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	if err := api.RegisterValidations(); err != nil {
		return fmt.Errorf("register validations: %w", err)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	public := router.Group("/api/auth")
	api.NewAuthHandler(svc.Auth).Register(public)

	protected := router.Group("/api")
	protected.Use(api.AuthMiddleware(svc.Signer))
	api.NewFlightHandler(svc.Flights).Register(protected.Group("/flights"))
	api.NewTripHandler(svc.Trips).Register(protected.Group("/trips"))
	api.NewAirportHandler(svc.Airports).Register(protected.Group("/airports"))
	api.NewPilotHandler(svc.Pilots).Register(protected.Group("/pilots"))
	api.NewFareHandler(svc.Fares).Register(protected.Group("/fares"))
	api.NewCardHandler(svc.Cards).Register(protected.Group("/cards"))

	if cfg.HTTP.SwaggerDir != "" {
		fs := http.FileServer(http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/swagger/*any", gin.WrapH(http.StripPrefix("/swagger/", fs)))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/aeroops.swagger.json"),
		)))
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
