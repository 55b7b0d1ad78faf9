// Copyright (c) 2024 RoseLoverX

// Command mtclient logs in with the account configured in the environment,
// prints incoming messages and optionally downloads a file by its id.
//
//	TG_APP_ID=... TG_APP_HASH=... mtclient -phone +15550100 -download <file id>
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/roseloverx/mtproto/telegram"
)

func main() {
	phone := flag.String("phone", "", "phone number to log in with, a bot token can be set in TG_BOT_TOKEN instead")
	download := flag.String("download", "", "file id to download, then exit")
	dir := flag.String("dir", "downloads", "directory downloads are saved to")
	workDir := flag.String("workdir", ".", "directory of the session file")
	flag.Parse()

	if err := run(*phone, *download, *dir, *workDir); err != nil {
		fmt.Fprintln(os.Stderr, "mtclient:", err)
		os.Exit(1)
	}
}

func run(phone, download, dir, workDir string) error {
	cfg, err := telegram.ConfigFromEnv()
	if err != nil {
		return err
	}
	cfg.WorkDir = workDir
	if phone != "" {
		cfg.Phone = telegram.FixedValue(phone)
		cfg.Code = telegram.ProviderValue(prompt("enter the code sent to %s: "))
		cfg.Password = telegram.ProviderValue(prompt("enter your password (hint %q): "))
	}

	client, err := telegram.NewClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Stop(); err != nil {
			client.Log.WithError(err).Error("stopping client")
		}
	}()

	if download != "" {
		path, err := client.DownloadMedia(ctx, download, &telegram.DownloadOptions{
			FileName: strings.TrimSuffix(dir, "/") + "/",
			Progress: func(current, total int64) error {
				client.Log.Infof("downloaded %d of %d bytes", current, total)
				return nil
			},
		})
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	client.AddHandler(telegram.NewHandler(printMessage,
		telegram.OfType[*telegram.UpdateNewMessage],
	), 0)
	client.AddHandler(telegram.NewHandler(printMessage,
		telegram.OfType[*telegram.UpdateNewChannelMessage],
	), 0)

	client.Log.Info("listening for messages, press ctrl+c to exit")
	<-ctx.Done()
	return nil
}

func printMessage(_ context.Context, c *telegram.Client, u *telegram.UpdateEvent) error {
	var msg telegram.Message
	switch upd := u.Update.(type) {
	case *telegram.UpdateNewMessage:
		msg = upd.Message
	case *telegram.UpdateNewChannelMessage:
		msg = upd.Message
	}
	if m, ok := msg.(*telegram.MessageObj); ok {
		c.Log.Infof("message %d: %s", m.ID, m.Message)
	}
	return nil
}

func prompt(format string) func(context.Context, string) (string, error) {
	in := bufio.NewReader(os.Stdin)
	return func(_ context.Context, hint string) (string, error) {
		fmt.Printf(format, hint)
		line, err := in.ReadString('\n')
		return strings.TrimSpace(line), err
	}
}
