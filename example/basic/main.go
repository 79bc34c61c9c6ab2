package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

const sampleDocument = `O prazo de entrega dos produtos é de 30 dias corridos a partir da confirmação do pedido.

Em caso de atraso na entrega, o fornecedor está sujeito a uma multa de 2% sobre o valor do pedido,
acrescida de 0,1% por dia de atraso, limitada a 10% do valor total.

A garantia dos produtos é de 12 meses contados da data de entrega, cobrindo defeitos de fabricação.
A garantia não cobre danos causados por uso inadequado.

O pagamento deve ser realizado em até 45 dias após a emissão da nota fiscal, por transferência bancária.`

func main() {
	// Start a test PostgreSQL container with pgvector
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// The local provider embeds with an ONNX model and needs no API key.
	// It cannot generate answers, so this example sticks to the default
	// strategy and prints the retrieved chunks instead of calling Ask.
	config := model.DefaultConfig()
	config.Provider = model.ProviderLocal
	config.Timeout = 5 * time.Minute

	ctx := context.Background()
	b, err := busca.New(ctx, config, dbConfig)
	if err != nil {
		log.Fatalf("Failed to create busca: %v", err)
	}
	defer b.Close()

	// Store the sample document as pre-chunked paragraphs
	texts := strings.Split(sampleDocument, "\n\n")
	inserted, err := b.AddTexts(ctx, texts, model.Metadata{"source": "contrato_exemplo"})
	if err != nil {
		log.Fatalf("Failed to insert chunks: %v", err)
	}
	fmt.Printf("Inserted %d chunks into collection %q\n\n", inserted, config.Collection)

	questions := []string{
		"qual o prazo de entrega?",
		"o que acontece em caso de atraso?",
		"qual o período de garantia?",
	}

	for _, question := range questions {
		outcome, err := b.Retrieve(ctx, question)
		if err != nil {
			log.Fatalf("Retrieval failed: %v", err)
		}

		fmt.Printf("Pergunta: %s\n", question)
		fmt.Printf("Estratégia: %s (score %.4f)\n", outcome.Strategy, outcome.Score)
		for i, result := range outcome.Results {
			if i >= 2 {
				break
			}
			fmt.Printf("  %d. (%.4f) %s\n", i+1, result.Score, result.Chunk.Content)
		}
		fmt.Println()
	}
}
