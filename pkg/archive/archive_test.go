package archive

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/docviz/docviz/pkg/errors"
	"github.com/docviz/docviz/pkg/graphson"
)

func docWith(paths []string, refs [][2]int) graphson.Document {
	var doc graphson.Document
	for i, p := range paths {
		doc.Vertices = append(doc.Vertices, graphson.Vertex{
			ID:    i,
			Label: "page",
			Properties: map[string]any{
				graphson.PropName: p,
				graphson.PropPath: "../../../" + p + ".html",
			},
		})
	}
	for i, r := range refs {
		doc.Edges = append(doc.Edges, graphson.Edge{
			ID: i, Label: "ref", OutV: r[0], InV: r[1],
			Properties: map[string]any{graphson.PropReferenceCount: 1},
		})
	}
	return doc
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer store.Close(ctx)

	snap := NewSnapshot("build-1", docWith([]string{"index", "guide"}, [][2]int{{0, 1}}))
	if err := store.Put(ctx, snap); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "build-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.BuildID != "build-1" || got.Vertices != 2 || got.Edges != 1 {
		t.Errorf("Get = %+v, want build-1 with 2 vertices / 1 edge", got)
	}
	if len(got.Document.Vertices) != 2 {
		t.Errorf("document round trip lost vertices: %d", len(got.Document.Vertices))
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = store.Get(context.Background(), "nope")
	if errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("Get missing = %v, want NOT_FOUND", err)
	}
}

func TestFileStorePutEmptyID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(context.Background(), Snapshot{}); err == nil {
		t.Error("Put should reject a snapshot without a build id")
	}
}

func TestFileStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	older := NewSnapshot("older", docWith([]string{"index"}, nil))
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := NewSnapshot("newer", docWith([]string{"index"}, nil))

	if err := store.Put(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, newer); err != nil {
		t.Fatal(err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List = %d entries, want 2", len(infos))
	}
	if infos[0].BuildID != "newer" || infos[1].BuildID != "older" {
		t.Errorf("List order = [%s %s], want newest first", infos[0].BuildID, infos[1].BuildID)
	}
}

func TestDiff(t *testing.T) {
	old := docWith([]string{"index", "guide", "legacy"}, [][2]int{{0, 1}, {0, 2}})
	// The new build renumbers ids, drops legacy, adds api, rewires a ref.
	curr := docWith([]string{"api", "guide", "index"}, [][2]int{{2, 1}, {1, 0}})

	d := Diff(old, curr)

	if want := []string{"../../../api.html"}; !reflect.DeepEqual(d.AddedPages, want) {
		t.Errorf("AddedPages = %v, want %v", d.AddedPages, want)
	}
	if want := []string{"../../../legacy.html"}; !reflect.DeepEqual(d.RemovedPages, want) {
		t.Errorf("RemovedPages = %v, want %v", d.RemovedPages, want)
	}
	if want := []string{"../../../guide.html -> ../../../api.html"}; !reflect.DeepEqual(d.AddedRefs, want) {
		t.Errorf("AddedRefs = %v, want %v", d.AddedRefs, want)
	}
	if want := []string{"../../../index.html -> ../../../legacy.html"}; !reflect.DeepEqual(d.RemovedRefs, want) {
		t.Errorf("RemovedRefs = %v, want %v", d.RemovedRefs, want)
	}
}

func TestDiffIdentical(t *testing.T) {
	doc := docWith([]string{"index", "guide"}, [][2]int{{0, 1}})
	if d := Diff(doc, doc); !d.Empty() {
		t.Errorf("Diff of identical documents = %+v, want empty", d)
	}
}
