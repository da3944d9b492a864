package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"crosslend/config"
	"crosslend/core/state"
	"crosslend/core/types"
	"crosslend/gateway"
	"crosslend/native/lending"
	"crosslend/native/oracle"
	"crosslend/native/registry"
	"crosslend/observability/logging"
	"crosslend/rpc"
	"crosslend/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("CROSSLEND_ENV"))
	logger := logging.Setup("crosslendd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	assets := registry.New()
	for _, asset := range cfg.Assets {
		if err := assets.AddAsset(asset.ID, asset.Decimals, asset.CollateralFactorBps, asset.LiquidationThresholdBps, asset.LiquidationBonusBps); err != nil {
			logger.Error("Failed to register asset", slog.String("asset", asset.ID), slog.Any("error", err))
			os.Exit(1)
		}
	}
	for _, chainID := range cfg.AllowedSourceChains {
		assets.SetAllowedSourceChain(chainID, true)
	}
	for _, mapping := range cfg.ExternalAssets {
		if err := assets.MapExternalAsset(mapping.ChainID, mapping.ExternalID, mapping.HubAssetID); err != nil {
			logger.Error("Failed to map external asset", slog.String("externalId", mapping.ExternalID), slog.Any("error", err))
			os.Exit(1)
		}
	}

	feed := oracle.NewManualFeed()
	adapter := oracle.NewAdapter(feed, time.Duration(cfg.OracleMaxStalenessS)*time.Second)

	sink := &logSink{logger: logger}

	engine := lending.NewEngine(assets, adapter, cfg.HubChainID)
	engine.SetState(state.NewStore(db))
	engine.SetPauses(cfg)
	engine.SetEventSink(sink)

	outbound := gateway.NewOutbound(&relayLog{logger: logger})
	outbound.SetEventSink(sink)
	engine.SetPayoutRouter(outbound)

	inbound := gateway.NewInbound(engine, assets, db)
	inbound.SetEventSink(sink)

	logger.Info("Starting crosslend hub",
		slog.Uint64("hubChainId", cfg.HubChainID),
		slog.Int("assets", len(cfg.Assets)),
		slog.String("rpc", cfg.RPCAddress),
	)
	server := rpc.NewServer(engine, inbound, feed)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// logSink surfaces module events on the structured log until an external
// event bus is attached.
type logSink struct {
	logger *slog.Logger
}

func (s *logSink) Emit(evt *types.Event) {
	attrs := make([]any, 0, len(evt.Attributes)*2)
	for key, value := range evt.Attributes {
		attrs = append(attrs, slog.String(key, value))
	}
	s.logger.With(attrs...).Info(evt.Type)
}

// relayLog records payout instructions for the host relayer to pick up from
// the log stream. TODO: replace with the relayer transport client once its
// endpoint contract is published.
type relayLog struct {
	logger *slog.Logger
}

func (r *relayLog) Send(instruction gateway.PayoutInstruction) error {
	r.logger.Info("payout instruction queued",
		slog.String("id", instruction.ID),
		slog.String("asset", instruction.Asset),
		slog.String("amount", instruction.Amount.String()),
		slog.Uint64("destinationChain", instruction.DestinationChain),
		slog.String("recipient", fmt.Sprintf("0x%x", instruction.Recipient)),
	)
	return nil
}
