// Command mirror-node copies selected Node.js releases from the upstream
// distribution into an S3-compatible bucket (Cloudflare R2 in production),
// laid out so the bucket's public URL can be used as rtvm's mirror setting:
//
//	<prefix>/index.json
//	<prefix>/v<version>/SHASUMS256.txt
//	<prefix>/v<version>/node-v<version>-<os>-<arch>.<ext>
package main

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const checksumFile = "SHASUMS256.txt"

// release is one index.json entry. Raw is kept so the published index
// carries every upstream field unchanged.
type release struct {
	Version *semver.Version
	Raw     json.RawMessage
}

// MirrorJob represents a single file to mirror
type MirrorJob struct {
	Version string
	URL     string
	SHA256  string
	Key     string
}

// Stats tracks mirroring statistics
type Stats struct {
	Total     int64
	Mirrored  int64
	Failed    int64
	BytesDown int64
}

var (
	upstream    = flag.String("upstream", "https://nodejs.org/dist", "Upstream distribution URL")
	versions    = flag.String("versions", "", "Comma-separated versions or ranges to mirror (e.g. ^22,^20,18.20.4)")
	platforms   = flag.String("platforms", "linux-x64,linux-arm64,darwin-x64,darwin-arm64,win-x64,win-x86", "Comma-separated <os>-<arch> labels")
	formats     = flag.String("formats", "tar.xz,tar.gz,zip,7z", "Comma-separated archive formats")
	prefix      = flag.String("prefix", "node", "Key prefix inside the bucket")
	dryRun      = flag.Bool("dry-run", false, "Report what would be done without doing it")
	syncOnly    = flag.Bool("sync-only", false, "Only mirror files not already in the bucket")
	r2Endpoint  = flag.String("r2-endpoint", "", "R2 endpoint URL")
	r2Bucket    = flag.String("r2-bucket", "", "R2 bucket name")
	r2AccessKey = flag.String("r2-access-key", "", "R2 access key ID")
	r2SecretKey = flag.String("r2-secret-key", "", "R2 secret access key")
	workers     = flag.Int("workers", 8, "Number of parallel workers")
	retries     = flag.Int("retries", 3, "Number of attempts per file")
)

var httpClient = &http.Client{Timeout: 10 * time.Minute}

func main() {
	flag.Parse()

	if *versions == "" {
		fmt.Fprintln(os.Stderr, "Error: --versions is required (e.g. --versions ^22,^20)")
		os.Exit(1)
	}

	if !*dryRun {
		if *r2Endpoint == "" || *r2Bucket == "" || *r2AccessKey == "" || *r2SecretKey == "" {
			fmt.Fprintln(os.Stderr, "Error: R2 credentials required (--r2-endpoint, --r2-bucket, --r2-access-key, --r2-secret-key)")
			os.Exit(1)
		}
	}

	ctx := context.Background()
	base := strings.TrimRight(*upstream, "/")

	constraints, err := parseConstraints(*versions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	indexData, err := fetch(ctx, base+"/index.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching index: %v\n", err)
		os.Exit(1)
	}
	releases, err := parseIndex(indexData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing index: %v\n", err)
		os.Exit(1)
	}

	selected := selectReleases(releases, constraints)
	fmt.Printf("Selected %d of %d releases\n", len(selected), len(releases))
	if len(selected) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no releases match --versions")
		os.Exit(1)
	}

	plats := splitList(*platforms)
	fmts := splitList(*formats)

	var jobs []MirrorJob
	for _, r := range selected {
		v := r.Version.String()
		sums, err := fetch(ctx, releaseURL(base, v, checksumFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching checksums for %s: %v\n", v, err)
			os.Exit(1)
		}
		jobs = append(jobs, MirrorJob{
			Version: v,
			URL:     releaseURL(base, v, checksumFile),
			Key:     objectKey(*prefix, v, checksumFile),
		})
		jobs = append(jobs, artifactJobs(base, *prefix, v, parseChecksums(sums), plats, fmts)...)
	}

	fmt.Printf("Total jobs to process: %d\n", len(jobs))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Would mirror the following files:")
		for _, job := range jobs {
			fmt.Printf("  %s -> %s\n", job.URL, job.Key)
		}
		fmt.Printf("  index.json (%d releases) -> %s\n", len(selected), path.Join(*prefix, "index.json"))
		return
	}

	client, err := createS3Client(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating S3 client: %v\n", err)
		os.Exit(1)
	}

	if *syncOnly {
		fmt.Println("Fetching existing files from the bucket...")
		existing, err := listExistingKeys(ctx, client)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing bucket contents: %v\n", err)
			os.Exit(1)
		}
		before := len(jobs)
		jobs = skipExisting(jobs, existing)
		fmt.Printf("Skipping %d files already in the bucket, %d remaining\n", before-len(jobs), len(jobs))
	}

	stats := processJobs(ctx, client, jobs)

	fmt.Println("\n=== Mirror Summary ===")
	fmt.Printf("Total:    %d\n", stats.Total)
	fmt.Printf("Mirrored: %d\n", stats.Mirrored)
	fmt.Printf("Failed:   %d\n", stats.Failed)
	fmt.Printf("Bytes:    %d MB\n", stats.BytesDown/(1024*1024))

	// The index goes last so clients never see a version whose files are missing
	if stats.Failed > 0 {
		fmt.Fprintln(os.Stderr, "Not publishing index.json because some files failed")
		os.Exit(1)
	}

	index, err := buildIndex(selected)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building index: %v\n", err)
		os.Exit(1)
	}
	if err := upload(ctx, client, path.Join(*prefix, "index.json"), index, "public, max-age=300"); err != nil {
		fmt.Fprintf(os.Stderr, "Error publishing index: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Published index.json with %d releases\n", len(selected))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseConstraints accepts exact versions (with or without v) and ranges
func parseConstraints(s string) ([]*semver.Constraints, error) {
	var out []*semver.Constraints
	for _, part := range splitList(s) {
		expr := part
		if v, err := semver.StrictNewVersion(strings.TrimPrefix(part, "v")); err == nil {
			expr = "=" + v.String()
		}
		c, err := semver.NewConstraint(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", part, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseIndex(data []byte) ([]release, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	releases := make([]release, 0, len(raw))
	for _, entry := range raw {
		var head struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(entry, &head); err != nil {
			return nil, err
		}
		v, err := semver.StrictNewVersion(strings.TrimPrefix(head.Version, "v"))
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", head.Version, err)
		}
		releases = append(releases, release{Version: v, Raw: entry})
	}
	return releases, nil
}

// selectReleases keeps releases matching any constraint, in index order
func selectReleases(releases []release, constraints []*semver.Constraints) []release {
	var out []release
	for _, r := range releases {
		for _, c := range constraints {
			if c.Check(r.Version) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// buildIndex renders the selected entries as an index.json document
func buildIndex(selected []release) ([]byte, error) {
	raw := make([]json.RawMessage, len(selected))
	for i, r := range selected {
		raw[i] = r.Raw
	}
	return json.Marshal(raw)
}

func parseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 {
			sums[fields[1]] = strings.ToLower(fields[0])
		}
	}
	return sums
}

// artifactJobs lists the archives published for version on the requested
// platforms and formats. Combinations missing from SHASUMS256.txt were
// never released and are skipped.
func artifactJobs(base, prefix, version string, sums map[string]string, plats, fmts []string) []MirrorJob {
	var jobs []MirrorJob
	for _, p := range plats {
		windows := strings.HasPrefix(p, "win-")
		for _, f := range fmts {
			if windows != (f == "zip" || f == "7z") {
				continue
			}
			name := fmt.Sprintf("node-v%s-%s.%s", version, p, f)
			sum, ok := sums[name]
			if !ok {
				continue
			}
			jobs = append(jobs, MirrorJob{
				Version: version,
				URL:     releaseURL(base, version, name),
				SHA256:  sum,
				Key:     objectKey(prefix, version, name),
			})
		}
	}
	return jobs
}

func releaseURL(base, version, name string) string {
	return fmt.Sprintf("%s/v%s/%s", base, version, name)
}

func objectKey(prefix, version, name string) string {
	return path.Join(prefix, "v"+version, name)
}

func skipExisting(jobs []MirrorJob, existing map[string]bool) []MirrorJob {
	var out []MirrorJob
	for _, job := range jobs {
		if !existing[job.Key] {
			out = append(out, job)
		}
	}
	return out
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".tar.gz"):
		return "application/gzip"
	case strings.HasSuffix(key, ".tar.xz"):
		return "application/x-xz"
	case strings.HasSuffix(key, ".zip"):
		return "application/zip"
	case strings.HasSuffix(key, ".7z"):
		return "application/x-7z-compressed"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".txt"):
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func createS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			*r2AccessKey,
			*r2SecretKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(*r2Endpoint)
	}), nil
}

func listExistingKeys(ctx context.Context, client *s3.Client) (map[string]bool, error) {
	keys := make(map[string]bool)
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: r2Bucket,
		Prefix: aws.String(*prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys[*obj.Key] = true
		}
	}

	return keys, nil
}

func processJobs(ctx context.Context, client *s3.Client, jobs []MirrorJob) *Stats {
	stats := &Stats{Total: int64(len(jobs))}
	jobChan := make(chan MirrorJob, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				if err := mirrorFile(ctx, client, job, stats); err != nil {
					fmt.Fprintf(os.Stderr, "Error mirroring %s: %v\n", job.Key, err)
					atomic.AddInt64(&stats.Failed, 1)
				} else {
					atomic.AddInt64(&stats.Mirrored, 1)
				}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	wg.Wait()
	return stats
}

func mirrorFile(ctx context.Context, client *s3.Client, job MirrorJob, stats *Stats) error {
	var lastErr error

	for attempt := 1; attempt <= *retries; attempt++ {
		if attempt > 1 {
			fmt.Printf("Retry %d/%d for %s\n", attempt, *retries, job.Key)
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		body, err := fetch(ctx, job.URL)
		if err != nil {
			lastErr = err
			continue
		}
		atomic.AddInt64(&stats.BytesDown, int64(len(body)))

		if err := verify(body, job.SHA256); err != nil {
			lastErr = err
			continue
		}

		if err := upload(ctx, client, job.Key, body, "public, max-age=31536000, immutable"); err != nil {
			lastErr = err
			continue
		}

		fmt.Printf("Mirrored: %s (%d bytes)\n", job.Key, len(body))
		return nil
	}

	return lastErr
}

// verify checks body against an expected SHA-256; an empty sum skips the check
func verify(body []byte, expected string) error {
	if expected == "" {
		return nil
	}
	hash := sha256.Sum256(body)
	if actual := hex.EncodeToString(hash[:]); actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

func upload(ctx context.Context, client *s3.Client, key string, body []byte, cacheControl string) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       r2Bucket,
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType(key)),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}
