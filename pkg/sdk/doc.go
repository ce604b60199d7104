// Package gamesearch provides a Go client for the gamesearch HTTP API.
//
// A search is a natural-language query answered one page at a time, either
// through a compiled structured query or through a vector search.
//
//	client, _ := gamesearch.New("http://localhost:8000",
//	    gamesearch.WithOrigin("http://localhost:5173"),
//	)
//	page, _ := client.Search(ctx, gamesearch.SearchRequest{Query: "open world RPGs after 2015"})
//
// # Paging
//
// Pager follows the server-issued cursor, or re-sends the compiled query or
// embedding when the server runs without a cursor store, so later pages
// never call the model again:
//
//	p := client.Pager(gamesearch.SearchRequest{Query: "cozy farming games", UseVectorSearch: true})
//	for p.Next(ctx) {
//	    for _, g := range p.Page().Result {
//	        fmt.Println(g.Name)
//	    }
//	}
//	if err := p.Err(); err != nil { ... }
package gamesearch
