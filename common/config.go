package common

import (
	"os"

	"github.com/joho/godotenv"
	logger "github.com/kthomas/go-logger"
)

var (
	// Log is the configured logger
	Log *logger.Logger

	// ConsumeNATSStreamingSubscriptions indicates if the NATS proof generation consumers should start
	ConsumeNATSStreamingSubscriptions bool

	// CacheEnabled indicates if a redis instance is configured for contract registration caching
	CacheEnabled bool

	// DefaultHyliNodeURL is the base URL of the Hyli node REST API
	DefaultHyliNodeURL string

	// NoirCircuitsPath is the directory containing the compiled Noir circuit packages
	NoirCircuitsPath string

	// NargoBin is the path to the nargo executable used for witness generation
	NargoBin string

	// BarretenbergBin is the path to the bb executable used for proof generation
	BarretenbergBin string

	// DefaultProvingBackend is the proving backend used when a request does not name one
	DefaultProvingBackend string
)

func init() {
	godotenv.Load()

	requireLogger()
	requireHyliNodeConfiguration()
	requireProvingBackendConfiguration()

	ConsumeNATSStreamingSubscriptions = os.Getenv("CONSUME_NATS_STREAMING_SUBSCRIPTIONS") == "true"
	CacheEnabled = os.Getenv("REDIS_HOSTS") != ""
}

func requireLogger() {
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" {
		lvl = "INFO"
	}

	var endpoint *string
	if os.Getenv("SYSLOG_ENDPOINT") != "" {
		endpt := os.Getenv("SYSLOG_ENDPOINT")
		endpoint = &endpt
	}

	Log = logger.NewLogger("attest", lvl, endpoint)
}

func requireHyliNodeConfiguration() {
	DefaultHyliNodeURL = os.Getenv("HYLI_NODE_URL")
	if DefaultHyliNodeURL == "" {
		DefaultHyliNodeURL = "http://localhost:4321"
	}
}

func requireProvingBackendConfiguration() {
	NoirCircuitsPath = os.Getenv("NOIR_CIRCUITS_PATH")
	if NoirCircuitsPath == "" {
		NoirCircuitsPath = "./circuits"
	}

	NargoBin = os.Getenv("NARGO_BIN")
	if NargoBin == "" {
		NargoBin = "nargo"
	}

	BarretenbergBin = os.Getenv("BB_BIN")
	if BarretenbergBin == "" {
		BarretenbergBin = "bb"
	}

	DefaultProvingBackend = os.Getenv("PROVING_BACKEND")
	if DefaultProvingBackend == "" {
		DefaultProvingBackend = "noir"
	}
}
