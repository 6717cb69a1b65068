package main

import (
	"context"
	"errors"
	"os"
	"time"

	"milkround/internal/amqp"
	"milkround/internal/cli"
	"milkround/internal/config"
	applog "milkround/internal/log"
	"milkround/internal/sheets"
	gsheet "milkround/internal/sheets/google"
	mem "milkround/internal/sheets/memory"
	"milkround/internal/worker"
)

func main() {
	cfg, logger := cli.Init(applog.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting notice-worker")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	var writer sheets.NoticeWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Exporting notices to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = mem.New()
		logger.Info("No GOOGLE_SPREADSHEET_ID provided, keeping notice rows in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	noticeWorker := worker.NewNoticeWorker(writer, logger)

	for {
		err := amqpClient.ConsumeBillNotices(ctx, noticeWorker.HandleNotice)
		if errors.Is(err, context.Canceled) {
			break
		}
		logger.Error("Notice consumption stopped, reconnecting", applog.FieldError, err)
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		if err := amqpClient.RetryConnect(ctx); err != nil {
			break
		}
	}
	logger.Info("Worker shutdown complete")
}
