package input

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tsinghua-fib-lab/odrmap/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v2"
)

// MongoDB中每条记录的class取值
const (
	ClassHeader   = "header"
	ClassRoad     = "road"
	ClassJunction = "junction"
)

const mongoTimeout = 60 * time.Second

// classDoc MongoDB中的一条记录：{class: ..., data: {...}}
type classDoc[T any] struct {
	Class string `bson:"class"`
	Data  T      `bson:"data"`
}

// Load 下载路网文档
// 功能：根据配置从YAML文件或MongoDB读取路网文档
// 参数：ctx-上下文，in-输入配置
// 返回：路网文档；File非空时优先读取文件
func Load(ctx context.Context, in config.Input) (*Document, error) {
	if in.File != "" {
		return LoadFile(in.File)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(in.URI))
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", in.URI)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warnf("disconnect from mongodb: %v", err)
		}
	}()
	log.Infof("start fetching from %s.%s", in.DB, in.Col)
	doc, err := LoadMongo(ctx, client.Database(in.DB).Collection(in.Col))
	if err != nil {
		return nil, err
	}
	log.Infof("finish fetching from %s.%s: %d roads, %d junctions", in.DB, in.Col, len(doc.Roads), len(doc.Junctions))
	return doc, nil
}

// LoadFile 从YAML文件读取路网文档，文档中出现未知字段时报错
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read network file %s", path)
	}
	return Unmarshal(data)
}

// Unmarshal 解析YAML格式的路网文档
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse network document")
	}
	return &doc, nil
}

// SaveFile 将路网文档写入YAML文件
func SaveFile(doc *Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal network document")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write network file %s", path)
}

// LoadMongo 从MongoDB集合读取路网文档
// 功能：按class读取header、road、junction三类记录并组装为文档
// 算法说明：
// 1. header至多一条，缺失时为空
// 2. road、junction按集合中的顺序追加
// 说明：任意一条记录解码失败都会返回error
func LoadMongo(ctx context.Context, coll *mongo.Collection) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	doc := &Document{}
	headers, err := loadClass[Header](ctx, coll, ClassHeader)
	if err != nil {
		return nil, err
	}
	if len(headers) > 1 {
		log.Warnf("%d header records in %s, using the first one", len(headers), coll.Name())
	}
	if len(headers) > 0 {
		doc.Header = headers[0]
	}
	if doc.Roads, err = loadClass[Road](ctx, coll, ClassRoad); err != nil {
		return nil, err
	}
	if doc.Junctions, err = loadClass[Junction](ctx, coll, ClassJunction); err != nil {
		return nil, err
	}
	return doc, nil
}

func loadClass[T any](ctx context.Context, coll *mongo.Collection, class string) ([]T, error) {
	cur, err := coll.Find(ctx, bson.M{"class": class})
	if err != nil {
		return nil, errors.Wrapf(err, "find class=%s in %s", class, coll.Name())
	}
	defer cur.Close(ctx)
	out := make([]T, 0)
	for cur.Next(ctx) {
		var result classDoc[T]
		if err := cur.Decode(&result); err != nil {
			return nil, errors.Wrapf(err, "decode class=%s record %d in %s", class, len(out), coll.Name())
		}
		out = append(out, result.Data)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate class=%s in %s", class, coll.Name())
	}
	return out, nil
}

// MongoRecords 将路网文档拆分为MongoDB记录，顺序为header、road、junction
func MongoRecords(doc *Document) []any {
	out := make([]any, 0, 1+len(doc.Roads)+len(doc.Junctions))
	out = append(out, classDoc[Header]{Class: ClassHeader, Data: doc.Header})
	for _, r := range doc.Roads {
		out = append(out, classDoc[Road]{Class: ClassRoad, Data: r})
	}
	for _, j := range doc.Junctions {
		out = append(out, classDoc[Junction]{Class: ClassJunction, Data: j})
	}
	return out
}

// SaveMongo 清空集合后写入路网文档
func SaveMongo(ctx context.Context, coll *mongo.Collection, doc *Document) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()
	if _, err := coll.DeleteMany(ctx, bson.M{"class": bson.M{"$in": []string{ClassHeader, ClassRoad, ClassJunction}}}); err != nil {
		return errors.Wrapf(err, "clear %s", coll.Name())
	}
	if _, err := coll.InsertMany(ctx, MongoRecords(doc)); err != nil {
		return errors.Wrapf(err, "insert into %s", coll.Name())
	}
	return nil
}
