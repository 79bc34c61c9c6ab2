// Command busca starts an interactive chat over the PDF chunks stored in the
// vector database.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

var (
	providerName string
	strategyName string
	collection   string
	topK         int
	timeout      time.Duration
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "busca",
	Short: "Chat com documentos PDF armazenados no Postgres com pgvector",
	Long: `Inicia um chat interativo sobre os documentos armazenados na coleção
configurada. As respostas são geradas somente a partir do contexto recuperado.

Estratégias de busca disponíveis: default, hyde, query2doc, iter-retgen, best.`,
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	config := model.DefaultConfig()
	config.Collection = collection
	config.TopK = topK
	config.Timeout = timeout
	config.Verbose = verbose

	var err error
	config.Provider, err = model.ParseProvider(providerName)
	if err != nil {
		return err
	}
	config.Strategy, err = model.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return fmt.Errorf("erro de configuração: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := busca.New(ctx, config, dbConfig)
	if err != nil {
		return fmt.Errorf("erro na inicialização: %w", err)
	}
	defer b.Close()

	return b.Chat(ctx)
}

func init() {
	rootCmd.Flags().StringVar(&providerName, "provider", string(model.ProviderGoogle), "Provedor de LLM: google, openai ou local")
	rootCmd.Flags().StringVar(&strategyName, "strategy", string(model.StrategyDefault), "Estratégia de busca: default, hyde, query2doc, iter-retgen ou best")
	rootCmd.Flags().StringVar(&collection, "collection", "documentos_pdf", "Nome da coleção no banco de dados vetorial")
	rootCmd.Flags().IntVar(&topK, "top-k", 10, "Número de trechos recuperados por busca")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Tempo limite por pergunta")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Exibe logs detalhados e fontes de contexto")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
