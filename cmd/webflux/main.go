// Command webflux crawls a set of seed URLs and emits RAG-ready chunks.
package main

import cmd "github.com/iyulab/webflux/internal/cli"

func main() {
	cmd.Execute()
}
