package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/habit-pools/pkg/config"
	wshandlers "github.com/chris/habit-pools/pkg/handlers/websockets"
)

var handler *wshandlers.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	cfg.Logger()

	store, err := cfg.OpenStore(context.Background())
	if err != nil {
		slog.Error("unable to open storage", "error", err)
		os.Exit(1)
	}
	handler = wshandlers.NewHandler(store)
}

// route dispatches on the API Gateway route key.
func route(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$connect":
		return handler.HandleConnect(ctx, request)
	case "$disconnect":
		return handler.HandleDisconnect(ctx, request)
	case "$default":
		return handler.HandleDefault(ctx, request)
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
}

func main() {
	lambda.Start(route)
}
