// Command edge runs the minimal HTTP bridge in front of a coordinator.
// It is a thin protocol reshaper only — retrieval augmentation and
// chat-session history belong to a different collaborator and are not
// implemented here.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/fogmesh/fogllm/internal/edge"
)

func main() {
	bind := flag.String("bind", ":8092", "address to listen on")
	coordinator := flag.String("coordinator", "http://127.0.0.1:50051", "coordinator base URL")
	flag.Parse()

	bridge := edge.New(*coordinator)
	log.Printf("[edge] listening on %s, forwarding to %s", *bind, *coordinator)
	log.Fatal(http.ListenAndServe(*bind, bridge.Handler()))
}
