// Command accountctl administers the users file from the terminal: create
// accounts and update their provider keys without going through the HTTP API.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"ugcstudio/internal/infra"
	"ugcstudio/internal/store"
)

func main() {
	var (
		registerFlag bool
		emailFlag    string
		passcodeFlag string
		openaiFlag   string
		kieFlag      string
	)
	flag.BoolVar(&registerFlag, "register", false, "create a new account instead of updating one")
	flag.StringVar(&emailFlag, "email", "", "account email")
	flag.StringVar(&passcodeFlag, "passcode", "", "passcode, required with -register")
	flag.StringVar(&openaiFlag, "openai-key", "", "OpenAI API key to store (fallbacks to environment)")
	flag.StringVar(&kieFlag, "kie-key", "", "Kie.ai API key to store (fallbacks to environment)")
	flag.Parse()

	_ = godotenv.Load()

	if strings.TrimSpace(emailFlag) == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(1)
	}

	openaiKey := strings.TrimSpace(openaiFlag)
	if openaiKey == "" {
		openaiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	kieKey := strings.TrimSpace(kieFlag)
	if kieKey == "" {
		kieKey = strings.TrimSpace(os.Getenv("KIE_API_KEY"))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	accounts, err := store.Open(cfg.UsersFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open users file: %v\n", err)
		os.Exit(1)
	}

	patch := store.Patch{}
	if openaiKey != "" {
		patch.OpenAIKey = &openaiKey
	}
	if kieKey != "" {
		patch.KieKey = &kieKey
	}

	if registerFlag {
		if strings.TrimSpace(passcodeFlag) == "" {
			fmt.Fprintln(os.Stderr, "-passcode is required with -register")
			os.Exit(1)
		}
		acc, err := accounts.Register(emailFlag, passcodeFlag, patch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to register account: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("registered %s\n", acc.Email)
		return
	}

	if patch.OpenAIKey == nil && patch.KieKey == nil {
		fmt.Fprintln(os.Stderr, "nothing to update: supply -openai-key or -kie-key")
		os.Exit(1)
	}
	acc, err := accounts.Put(emailFlag, patch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update account: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated %s (openai key: %s, kie key: %s)\n",
		acc.Email, store.MaskKey(acc.OpenAIKey), store.MaskKey(acc.KieKey))
}
