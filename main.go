package main

import "github.com/wundergraph/graphql-go-upload/cmd"

func main() {
	cmd.Execute()
}
