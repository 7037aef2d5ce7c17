// Package discovery embeds the product-discovery engine in a Go program
// without the HTTP service. It reads the catalog from Redis JSON documents,
// keeps one embedding per product and finds products for free-text queries,
// including informal Arabic.
//
// # Vector search
//
//	client, _ := discovery.New(ctx,
//	    discovery.WithRedis("localhost:6379", ""),
//	    discovery.WithOpenAI(discovery.OpenAIConfig{
//	        APIKey:         os.Getenv("OPENAI_API_KEY"),
//	        EmbeddingModel: "text-embedding-3-small",
//	        ChatModel:      "gpt-4o-mini",
//	    }),
//	)
//	defer client.Close()
//
//	_, _ = client.Rebuild(ctx)
//	res, _ := client.Ask(ctx, "سماد للقمح", 6)
//
// # Lexical search
//
// Chat extracts an intent, expands it with agricultural synonyms and scores the
// catalog term by term. It works without an embedder:
//
//	res, _ := client.Chat(ctx, "عندي حشرات على الطماطم")
package discovery
