package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	assistantx "github.com/Ade-Adeleke/SmartShopperAI/agent/assistant"
	capabilityx "github.com/Ade-Adeleke/SmartShopperAI/agent/capability"
	orderx "github.com/Ade-Adeleke/SmartShopperAI/agent/order"
	searchx "github.com/Ade-Adeleke/SmartShopperAI/agent/search"
	chromax "github.com/Ade-Adeleke/SmartShopperAI/pkg/chroma"
	configx "github.com/Ade-Adeleke/SmartShopperAI/pkg/config"
	_ "github.com/Ade-Adeleke/SmartShopperAI/pkg/logger/autoload"
	openaix "github.com/Ade-Adeleke/SmartShopperAI/pkg/openai"
	qstashx "github.com/Ade-Adeleke/SmartShopperAI/pkg/qstash"
)

type AppConfig struct {
	DatabaseURL     string `envconfig:"DATABASE_URL" required:"true"`
	OrderWebhookURL string `envconfig:"ORDER_WEBHOOK_URL"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	openaiCfg := configx.MustNew[openaix.Config]("OPENAI")
	chatModel, err := openaiCfg.New(ctx)
	if err != nil {
		panic(err)
	}

	openaiClient := openaix.NewClient(*openaiCfg)
	if openaiClient == nil {
		panic("failed to initialize openai client")
	}
	embedder, err := openaix.NewEmbedder(openaiClient, openaiCfg.EmbeddingModel)
	if err != nil {
		panic(err)
	}

	chromaCfg := configx.MustNew[chromax.Config]("CHROMA")
	chromaClient, err := chromax.NewClient(*chromaCfg)
	if err != nil {
		panic(err)
	}
	if err := chromaClient.Heartbeat(ctx); err != nil {
		panic(fmt.Sprintf("chroma is unreachable: %v", err))
	}

	retriever, err := searchx.NewRetriever(chromaClient, embedder)
	if err != nil {
		panic(err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(appCfg.DatabaseURL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	store, err := orderx.NewBunStore(db)
	if err != nil {
		panic(err)
	}
	if err := store.Init(ctx); err != nil {
		panic(err)
	}

	var pipelineOpts []orderx.PipelineOption
	if strings.TrimSpace(appCfg.OrderWebhookURL) != "" {
		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		notifier, err := orderx.NewWebhookNotifier(qstashx.MustNew(*qstashCfg), appCfg.OrderWebhookURL)
		if err != nil {
			panic(err)
		}
		pipelineOpts = append(pipelineOpts, orderx.WithNotifier(notifier))
	}

	pipeline, err := orderx.NewPipeline(store, pipelineOpts...)
	if err != nil {
		panic(err)
	}

	router, err := capabilityx.NewRouter(retriever, pipeline)
	if err != nil {
		panic(err)
	}

	bot, err := assistantx.New(ctx, chatModel, router, assistantx.Config{})
	if err != nil {
		panic(err)
	}

	runChatLoop(ctx, bot, store)
}

func runChatLoop(ctx context.Context, bot *assistantx.Assistant, store orderx.Store) {
	fmt.Println("SmartShopper AI ready. Ask about products or place an order.")
	fmt.Println("Commands: quit, clear, orders, stats")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		case "clear":
			bot.Reset()
			fmt.Println("Conversation cleared.")
			continue
		case "orders":
			printRecentOrders(ctx, store)
			continue
		case "stats":
			printStatistics(ctx, store)
			continue
		}

		reply, err := bot.ProcessMessage(ctx, input)
		if err != nil {
			fmt.Printf("Assistant error: %v\n", err)
			continue
		}
		fmt.Printf("Assistant: %s\n", reply)
	}
}

func printRecentOrders(ctx context.Context, store orderx.Store) {
	orders, err := store.ListRecent(ctx, 5)
	if err != nil {
		fmt.Printf("Failed to list orders: %v\n", err)
		return
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	for _, o := range orders {
		fmt.Printf("%s  %-10s  $%.2f  %d item(s)  %s\n",
			o.ID, o.Status, o.TotalAmount, len(o.Items), o.CreatedAt.Format(time.RFC3339))
	}
}

func printStatistics(ctx context.Context, store orderx.Store) {
	stats, err := store.Statistics(ctx)
	if err != nil {
		fmt.Printf("Failed to load statistics: %v\n", err)
		return
	}
	fmt.Printf("Orders: %d  Revenue: $%.2f  Average: $%.2f\n",
		stats.TotalOrders, stats.TotalRevenue, stats.AverageOrderValue)
	for _, status := range []orderx.Status{
		orderx.StatusPending,
		orderx.StatusConfirmed,
		orderx.StatusProcessing,
		orderx.StatusShipped,
		orderx.StatusDelivered,
		orderx.StatusCancelled,
	} {
		if count, ok := stats.StatusCounts[status]; ok {
			fmt.Printf("  %-10s %d\n", status, count)
		}
	}
}
