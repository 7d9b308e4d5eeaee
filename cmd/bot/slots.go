package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "Посчитать свободные слоты и вывести отчёт",
		Long: `Один раз скачивает календарь и печатает тот же отчёт, что бот
показывает в меню. Удобно для проверки настроек без Telegram.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout*2)
			defer cancel()

			report, err := a.service.ComputeReport(ctx)
			if err != nil {
				return fmt.Errorf("не удалось посчитать свободные слоты: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report)
			return err
		},
	}
}
