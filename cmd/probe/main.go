// Package main реализует пробник работающего сервера бейджей.
//
// Пробник выпускает пачку конкурентных запросов бейджа по одному ключу
// и проверяет через /count/{key}, что счётчик вырос ровно на размер пачки.
// Параллельно логирует загрузку CPU и памяти хоста.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RoGogDBD/profile-views/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	keyFlag      string
	burstFlag    int
	intervalFlag int
)

type NetAddress struct {
	Host string
	Port int
}

func (a NetAddress) String() string {
	return a.Host + ":" + strconv.Itoa(a.Port)
}

func (a *NetAddress) Set(s string) error {
	hp := strings.Split(s, ":")
	a.Host = hp[0]
	if len(hp) == 2 {
		port, err := strconv.Atoi(hp[1])
		if err != nil {
			return err
		}
		a.Port = port
	} else {
		a.Port = 8080
	}
	return nil
}

func parseFlags() *NetAddress {
	addr := &NetAddress{Host: "localhost", Port: 8080}
	flag.Var(addr, "a", "Server address host:port")
	flag.StringVar(&keyFlag, "k", "probe", "Profile key to hit")
	flag.IntVar(&burstFlag, "n", 10, "Number of concurrent badge requests per burst")
	flag.IntVar(&intervalFlag, "r", 0, "Repeat interval in seconds (0 = one shot)")
	flag.Parse()

	return addr
}

// fetchCount возвращает текущее значение счётчика; 404 трактуется как 0.
func fetchCount(client *resty.Client, key string) (int64, error) {
	resp, err := client.R().Get("/count/" + key)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return 0, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	return strconv.ParseInt(strings.TrimSpace(string(resp.Body())), 10, 64)
}

// fetchBadge запрашивает бейдж со сжатием и возвращает SVG-документ.
func fetchBadge(client *resty.Client, key string) ([]byte, error) {
	resp, err := client.R().
		SetHeader("Accept-Encoding", "gzip").
		Get("/badge/" + key)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	body := resp.Body()
	if resp.Header().Get("Content-Encoding") == "gzip" {
		body, err = config.GzipDecompress(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress badge: %w", err)
		}
	}
	if !bytes.Contains(body, []byte("<svg")) {
		return nil, fmt.Errorf("response is not an SVG document")
	}
	return body, nil
}

// runBurst выпускает burst конкурентных запросов бейджа и проверяет счётчик.
func runBurst(client *resty.Client, key string, burst int) error {
	before, err := fetchCount(client, key)
	if err != nil {
		return fmt.Errorf("failed to read count before burst: %w", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, burst)
	for i := 0; i < burst; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := fetchBadge(client, key); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}

	after, err := fetchCount(client, key)
	if err != nil {
		return fmt.Errorf("failed to read count after burst: %w", err)
	}

	if after-before != int64(burst) {
		return fmt.Errorf("count advanced by %d, expected %d", after-before, burst)
	}
	log.Printf("Burst OK: key=%s views %d -> %d", key, before, after)
	return nil
}

func reportResources() {
	if vm, err := mem.VirtualMemory(); err == nil {
		log.Printf("Host memory used: %.1f%%", vm.UsedPercent)
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		log.Printf("Host CPU: %.1f%%", percents[0])
	}
}

func main() {
	addr := parseFlags()

	fmt.Println("Server URL", addr.String())
	fmt.Println("Key", keyFlag)
	fmt.Println("Burst size", burstFlag)

	client := resty.New().
		SetBaseURL("http://" + addr.String()).
		SetTimeout(5 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond)

	for {
		if err := runBurst(client, keyFlag, burstFlag); err != nil {
			log.Printf("Probe failed: %v", err)
		}
		reportResources()

		if intervalFlag <= 0 {
			return
		}
		time.Sleep(time.Duration(intervalFlag) * time.Second)
	}
}
