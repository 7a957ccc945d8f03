package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"github.com/Paintersrp/linkrank/internal/graph"
)

func writePage(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
	return path
}

func names(docs []graph.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Name
	}
	return out
}

func TestDirReadsMatchingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePage(t, dir, "b.html", `<a href="a.html">a</a>`)
	writePage(t, dir, "a.html", `hello`)
	writePage(t, dir, "nested/c.HTML", `nested`)
	writePage(t, dir, "notes.txt", `ignored by extension`)
	writePage(t, dir, ".git/d.html", `hidden directory`)
	writePage(t, dir, "drafts/e.html", `ignored folder`)

	src := NewDir(dir, []string{".html"})
	src.IgnoredFolders = []string{"Drafts"}
	src.Workers = 2

	docs, err := src.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, names(docs)); diff != "" {
		t.Fatalf("document names (-want +got):\n%s", diff)
	}
	if string(docs[1].Text) != `<a href="a.html">a</a>` {
		t.Fatalf("unexpected content for b: %q", docs[1].Text)
	}
}

func TestDirMissingRoot(t *testing.T) {
	t.Parallel()

	src := NewDir(filepath.Join(t.TempDir(), "missing"), nil)
	if _, err := src.Documents(context.Background()); err == nil {
		t.Fatalf("expected error for missing directory")
	}

	if _, err := (&Dir{}).Documents(context.Background()); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestStaticReturnsCopy(t *testing.T) {
	t.Parallel()

	src := Static{{Name: "a"}, {Name: "b"}}
	docs, err := src.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents returned error: %v", err)
	}
	docs[0].Name = "changed"
	if src[0].Name != "a" {
		t.Fatalf("expected static source to be unaffected by caller mutation")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Documents(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

// fakeS3 serves objects from memory, paging listings pageSize keys at a time.
type fakeS3 struct {
	objects  map[string]string
	pageSize int
	lists    int
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.lists++

	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := aws.ToString(in.ContinuationToken); token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, err
		}
		start = n
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, fmt.Errorf("no such key %q", aws.ToString(in.Key))
	}
	size := int64(len(body))
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(size),
		ContentRange:  aws.String(fmt.Sprintf("bytes 0-%d/%d", size-1, size)),
	}, nil
}

func TestS3ListsPrefixAndDownloads(t *testing.T) {
	t.Parallel()

	client := &fakeS3{
		pageSize: 2,
		objects: map[string]string{
			"site/pages/1.html":  `<a href="2.html">two</a>`,
			"site/pages/2.html":  `<a href="1.html">one</a>`,
			"site/pages/3.html":  `three`,
			"site/pages/x.css":   `body {}`,
			"site/other/4.html":  `elsewhere`,
			"site/pages/sub/":    `folder marker`,
			"site/pages/5.html":  `five`,
			"unrelated/6.html":   `six`,
			"site/pages/7.htm":   `seven`,
			"site/pages/8.HTML":  `eight`,
			"site/pages/9.html~": `backup`,
		},
	}

	src := NewS3WithClient(client, "bucket", "site/pages/", []string{".html", ".htm"})
	docs, err := src.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"1", "2", "3", "5", "7", "8"}, names(docs)); diff != "" {
		t.Fatalf("document names (-want +got):\n%s", diff)
	}
	if string(docs[0].Text) != `<a href="2.html">two</a>` {
		t.Fatalf("unexpected body for 1: %q", docs[0].Text)
	}
	if client.lists < 2 {
		t.Fatalf("expected paginated listing, got %d list calls", client.lists)
	}
}

func TestS3RequiresBucket(t *testing.T) {
	t.Parallel()

	src := NewS3WithClient(&fakeS3{pageSize: 1}, "", "", nil)
	if _, err := src.Documents(context.Background()); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
