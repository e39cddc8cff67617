// Package stringlens provides a Go client for the stringlens HTTP API.
//
// The service analyzes submitted strings (length, palindrome check, unique
// characters, word count, SHA-256 and character frequencies) and serves them
// back by value, by structured filters or by a natural-language query.
//
//	client, _ := stringlens.New("http://localhost:3000",
//	    stringlens.WithAPIKey(os.Getenv("STRINGLENS_API_KEY")),
//	)
//	s, _ := client.Create(ctx, "racecar")
//	list, _ := client.List(ctx, stringlens.Filter{IsPalindrome: stringlens.Bool(true)})
//	res, _ := client.Query(ctx, "all single word palindromic strings")
package stringlens
