// Command generate runs the whole flow from the terminal: upload a product
// photo, generate the Thai review script and caption, derive the video prompt,
// submit the video task and wait for the result URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"ugcstudio/internal/infra"
	"ugcstudio/internal/pipeline"
	"ugcstudio/internal/providers/kie"
	"ugcstudio/internal/providers/openai"
	"ugcstudio/internal/store"
)

func main() {
	_ = godotenv.Load()

	var (
		imagePath = flag.String("image", "", "path to the product photo (jpeg, png or webp)")
		name      = flag.String("name", "", "product name")
		details   = flag.String("details", "", "product details")
		style     = flag.String("style", "", "review style")
		objective = flag.String("objective", "", "review objective")
		email     = flag.String("email", "", "account email whose stored keys and rules to use (optional)")
	)
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	accounts, err := store.Open(cfg.UsersFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open users file")
	}
	set := accounts.ResolveEffective(*email)
	if set.OpenAIKey == "" {
		set.OpenAIKey = cfg.OpenAIAPIKey
	}
	if set.KieKey == "" {
		set.KieKey = cfg.KieAPIKey
	}

	if *imagePath == "" {
		logger.Fatal().Msg("-image is required")
	}
	data, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read image")
	}
	img := pipeline.ImageFile{
		Data:     data,
		Filename: filepath.Base(*imagePath),
		Mime:     mime.TypeByExtension(filepath.Ext(*imagePath)),
	}

	pipe := pipeline.New(pipeline.Options{
		Scripts: openai.NewClient(openai.Options{BaseURL: cfg.OpenAIBaseURL}),
		Videos:  kie.NewClient(kie.Options{BaseURL: cfg.KieBaseURL}),
		Logger:  logger,
	})
	sess := pipeline.NewSession()
	ctx := context.Background()

	form := pipeline.Form{
		ProductName:     *name,
		ProductDetails:  *details,
		ReviewStyle:     *style,
		ReviewObjective: *objective,
		Image:           img,
	}
	if err := pipe.UploadAndGenerateScript(ctx, sess, set, form); err != nil {
		logger.Fatal().Err(err).Msg("script generation failed")
	}
	snap := sess.Snapshot()
	fmt.Println("script:")
	fmt.Println(snap.Script)
	fmt.Println("caption:")
	fmt.Println(snap.Caption)

	if err := pipe.GenerateVideoPrompt(ctx, sess, set, pipeline.PromptForm{
		ProductName:    *name,
		ProductDetails: *details,
		ReviewStyle:    *style,
	}); err != nil {
		logger.Fatal().Err(err).Msg("video prompt generation failed")
	}
	fmt.Println("video prompt:")
	fmt.Println(sess.Snapshot().VideoPrompt)

	if err := pipe.SubmitVideoTask(ctx, sess, set); err != nil {
		logger.Fatal().Err(err).Msg("video task submission failed")
	}
	logger.Info().Str("task_id", sess.Snapshot().TaskID).Msg("waiting for the video")
	pipe.Wait(sess)

	snap = sess.Snapshot()
	switch snap.Stage {
	case pipeline.StageTaskSucceeded:
		fmt.Println("video ready:", snap.VideoURL)
	case pipeline.StageTaskFailed:
		logger.Fatal().Str("reason", snap.FailureReason).Msg("video generation failed")
	default:
		logger.Fatal().Str("stage", string(snap.Stage)).Msg("task ended in an unexpected stage")
	}
}
