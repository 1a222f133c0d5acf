// Command farmd serves the save pipeline (C6) and withdrawal preparer (C7)
// over HTTP.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/greenacre/farmcore/catalog"
	"github.com/greenacre/farmcore/config"
	"github.com/greenacre/farmcore/crypto/certgen"
	"github.com/greenacre/farmcore/events"
	"github.com/greenacre/farmcore/httpapi"
	"github.com/greenacre/farmcore/repo"
	"github.com/greenacre/farmcore/save"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to config file")
	keyPath := flag.String("key", "signer.key", "path to the withdrawal-signer keystore file")
	genKey := flag.Bool("genkey", false, "generate a new signer key and exit")
	genCerts := flag.String("gencerts", "", "generate a CA + server TLS cert pair into the given directory and exit")
	flag.Parse()

	if *genCerts != "" {
		if err := certgen.GenerateAll(*genCerts, "farmd", nil); err != nil {
			log.Fatalf("gencerts: %v", err)
		}
		fmt.Printf("Certificates generated in %s\n", *genCerts)
		return
	}

	// Read keystore password from environment (not CLI flags — they leak via ps).
	password := os.Getenv("FARMD_KEYSTORE_PASSWORD")
	if password == "" {
		log.Println("WARNING: FARMD_KEYSTORE_PASSWORD not set — keystore will use an empty password")
	}

	if *genKey {
		ks, err := repo.GenerateFileKeystore(*keyPath, password)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Generated signer key. Address: %s\n", ks.Address().Hex())
		fmt.Printf("Saved to: %s\n", *keyPath)
		return
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.KeystorePassword != "" {
		password = cfg.KeystorePassword
	}

	signer, err := repo.OpenFileKeystore(*keyPath, password)
	if err != nil {
		log.Fatalf("open keystore: %v", err)
	}
	log.Printf("Signer address: %s", signer.Address().Hex())

	// ---- repository + event store ----
	var repository save.Repository
	var eventStore save.EventStore
	switch cfg.Backend {
	case config.BackendLevelDB:
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			log.Fatalf("mkdir data dir: %v", err)
		}
		farmRepo, err := repo.OpenLevelRepository(cfg.DataDir + "/farms")
		if err != nil {
			log.Fatalf("open farm repository: %v", err)
		}
		defer farmRepo.Close()
		eventRepo, err := repo.OpenLevelEventStore(cfg.DataDir + "/events")
		if err != nil {
			log.Fatalf("open event store: %v", err)
		}
		defer eventRepo.Close()
		repository, eventStore = farmRepo, eventRepo
	case config.BackendMySQL:
		farmRepo, err := repo.NewMySQLRepository(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("open farm repository: %v", err)
		}
		defer farmRepo.Close()
		eventRepo, err := repo.NewMySQLEventStore(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("open event store: %v", err)
		}
		defer eventRepo.Close()
		repository, eventStore = farmRepo, eventRepo
	default:
		log.Fatalf("unknown backend %q", cfg.Backend)
	}

	// ---- on-chain facade ----
	var chain save.Chain
	if cfg.EthRPCURL != "" && cfg.FarmContractHex != "" {
		ethChain, err := repo.NewEthChain(cfg.EthRPCURL, common.HexToAddress(cfg.FarmContractHex), catalog.Default)
		if err != nil {
			log.Fatalf("connect chain: %v", err)
		}
		defer ethChain.Close()
		chain = ethChain
	} else {
		log.Println("WARNING: eth_rpc_url/farm_contract not set — every save will fail reconciliation")
	}

	// ---- wallet (reference signature verifier, §1 scopes the real one out) ----
	addressBook := repo.NewAddressBook()

	// ---- whitelist ----
	var whitelist save.Whitelist
	if len(cfg.WhitelistAddresses) > 0 {
		addrs := make([]common.Address, 0, len(cfg.WhitelistAddresses))
		for _, hex := range cfg.WhitelistAddresses {
			addrs = append(addrs, common.HexToAddress(hex))
		}
		whitelist = repo.NewStaticWhitelist(addrs)
	}

	emitter := events.NewEmitter()
	emitter.Subscribe(events.EventSaveCompleted, func(ev events.Event) {
		log.Printf("[events] save completed for farm %d: %v", ev.FarmID, ev.Data)
	})
	emitter.Subscribe(events.EventWithdrawPrepared, func(ev events.Event) {
		log.Printf("[events] withdraw prepared for farm %d: %v", ev.FarmID, ev.Data)
	})

	deps := save.Deps{
		Repository: repository,
		EventStore: eventStore,
		Chain:      chain,
		Wallet:     addressBook,
		Whitelist:  whitelist,
		Emitter:    emitter,
		Catalog:    catalog.Default,
	}

	handler := httpapi.NewHandler(deps, signer, catalog.Default, string(cfg.Network))

	server := httpapi.NewServer(cfg.HTTPAddr, handler, cfg.HTTPAuthToken)
	if cfg.TLS != nil {
		tlsCfg, err := config.LoadTLSConfig(cfg.TLS)
		if err != nil {
			log.Fatalf("tls: %v", err)
		}
		if tlsCfg != nil {
			server = server.WithTLS(tlsCfg)
			log.Println("mTLS enabled")
		}
	}
	if err := server.Start(); err != nil {
		log.Fatalf("http start: %v", err)
	}
	defer server.Stop()
	log.Printf("farmd listening on %s (network=%s, backend=%s)", cfg.HTTPAddr, cfg.Network, cfg.Backend)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down...")
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
