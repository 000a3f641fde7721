// Command stream-handler is an AWS Lambda function that logs record lifecycle
// events from the account table stream.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/tweetstore/stream"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	h := stream.NewHandler(stream.NewLogSink(logger), logger)
	lambda.Start(h.HandleRecordEvents)
}
