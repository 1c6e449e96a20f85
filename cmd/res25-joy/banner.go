package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	res25joy "github.com/KinkiKnights/res25-joy"
	"github.com/KinkiKnights/res25-joy/config"
)

// printBanner writes the startup summary to the console: system info, the
// served file inventory, and the effective limits. Failures here are
// cosmetic and never stop the server.
func printBanner(ctx context.Context, cfg *config.Config, service *res25joy.TransferService) {
	fmt.Printf("Serving directory: %s\n", cfg.Server.Root)

	printSystemInfo(ctx)

	files, err := service.Inventory(ctx)
	if err != nil {
		slog.Warn("could not list served files", "err", err)
	} else {
		fmt.Println("\nAvailable files:")
		var total uint64
		for _, f := range files {
			fmt.Printf("  - %s (%s)\n", f.Path, humanize.IBytes(uint64(f.Size)))
			total += uint64(f.Size)
		}
		fmt.Printf("Total size: %s\n", humanize.IBytes(total))
	}

	fmt.Printf("\nListening on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Upload with: POST http://%s:%d/<filename>\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Settings: chunk %s, timeout %ds, max upload %s, max connections %d\n",
		humanize.IBytes(uint64(cfg.Transfer.ChunkSize)),
		cfg.Server.Timeout,
		humanize.IBytes(uint64(cfg.Transfer.MaxUploadSize)),
		cfg.Server.MaxConnections,
	)
	if cfg.Log.File != "" {
		fmt.Printf("Log file: %s\n", cfg.Log.File)
	}
	fmt.Println("Press Ctrl+C to stop")
}

func printSystemInfo(ctx context.Context) {
	fmt.Println("\nSystem info:")

	if info, err := host.InfoWithContext(ctx); err == nil {
		fmt.Printf("  Platform: %s %s (%s)\n", info.Platform, info.PlatformVersion, info.KernelArch)
	}
	fmt.Printf("  CPU: %d cores\n", runtime.NumCPU())
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fmt.Printf("  Memory: %s total\n", humanize.IBytes(vm.Total))
	}
	if du, err := disk.UsageWithContext(ctx, "."); err == nil {
		fmt.Printf("  Disk free: %s\n", humanize.IBytes(du.Free))
	}
}
