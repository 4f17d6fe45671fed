// Package storesearch embeds the store dashboard search stack in a Go program:
// query normalization and spelling correction, role-filtered navigation
// search, table filtering and command palette sessions backed by an
// optional remote search endpoint.
//
// # Query pipeline
//
//	client, _ := storesearch.New(ctx)
//	q := client.Process("گوشی سامسونک")
//	fmt.Println(q.Final, q.Suggestion)
//
// # Command palette
//
//	client, _ := storesearch.New(ctx,
//	    storesearch.WithRedis("localhost:6379", ""),
//	    storesearch.WithBackend("https://shop.example.com", token),
//	)
//	p, _ := client.OpenPalette(ctx, "u-42", "cashier")
//	p.Keystroke("فاکتور")
//	for snap := range p.Updates() {
//	    render(snap)
//	}
package storesearch
