package internal

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"epaygate/config"
	"epaygate/entity"
	"epaygate/services"
)

const (
	collectionLog            = "payment_log"
	collectionOrders         = "orders"
	collectionSettings       = "gateway_settings"
	collectionPaymentChoices = "payment_choices"
	collectionCurrencyRates  = "currency_rates"
)

type MongoDB struct {
	clientOptions    *options.ClientOptions
	database         string
	logRecordsNumber int64
}

func NewMongoClient(conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		clientOptions:    clientOptions,
		database:         conf.Mongo.Database,
		logRecordsNumber: conf.LogRecords,
	}
	return client, nil
}

func (m *MongoDB) connect(ctx context.Context) (*mongo.Client, error) {
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (m *MongoDB) disconnect(ctx context.Context, connection *mongo.Client) {
	err := connection.Disconnect(ctx)
	if err != nil {
		log.Println("mongodb disconnect error", err)
	}
}

func (m *MongoDB) GetOrder(ctx context.Context, id int) (*entity.Order, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	filter := bson.D{{Key: "order_id", Value: id}}
	collection := connection.Database(m.database).Collection(collectionOrders)
	var order entity.Order
	if err = collection.FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder saves the order's payment-related state: status, notes and
// update time. Concurrency control on the record is the storage layer's
// concern, scoped to the single order being processed.
func (m *MongoDB) UpdateOrder(ctx context.Context, order *entity.Order) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionOrders)
	filter := bson.D{{Key: "order_id", Value: order.Id}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: order.Status},
			{Key: "notes", Value: order.Notes},
			{Key: "time_updated", Value: order.TimeUpdated},
		}},
	}
	if _, err = collection.UpdateOne(ctx, filter, update); err != nil {
		return err
	}
	return nil
}

func (m *MongoDB) GetPaymentChoice(ctx context.Context, customerId string) (entity.PaymentChoice, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return entity.ChoiceNone, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionPaymentChoices)
	filter := bson.D{{Key: "customer_id", Value: customerId}}
	var record struct {
		CustomerId string               `bson:"customer_id"`
		Method     entity.PaymentChoice `bson:"method"`
	}
	err = collection.FindOne(ctx, filter).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return entity.ChoiceNone, nil
	}
	if err != nil {
		return entity.ChoiceNone, err
	}
	return record.Method, nil
}

func (m *MongoDB) SavePaymentChoice(ctx context.Context, customerId string, choice entity.PaymentChoice) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionPaymentChoices)
	filter := bson.D{{Key: "customer_id", Value: customerId}}
	set := bson.M{"$set": bson.M{"customer_id": customerId, "method": choice}}
	_, err = collection.UpdateOne(ctx, filter, set, options.Update().SetUpsert(true))
	return err
}

func (m *MongoDB) GetGatewaySettings(ctx context.Context) (*entity.GatewaySettings, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionSettings)
	var settings entity.GatewaySettings
	if err = collection.FindOne(ctx, bson.D{}).Decode(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (m *MongoDB) SaveGatewaySettings(ctx context.Context, settings *entity.GatewaySettings) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionSettings)
	set := bson.M{"$set": settings}
	_, err = collection.UpdateOne(ctx, bson.D{}, set, options.Update().SetUpsert(true))
	return err
}

func (m *MongoDB) DeleteGatewaySettings(ctx context.Context) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionSettings)
	_, err = collection.DeleteMany(ctx, bson.D{})
	return err
}

func (m *MongoDB) GetCurrencyRate(ctx context.Context, code string) (float64, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionCurrencyRates)
	filter := bson.D{{Key: "code", Value: code}}
	var rate entity.CurrencyRate
	if err = collection.FindOne(ctx, filter).Decode(&rate); err != nil {
		return 0, err
	}
	if rate.Rate <= 0 {
		return 0, fmt.Errorf("invalid rate %v for %s", rate.Rate, code)
	}
	return rate.Rate, nil
}

func (m *MongoDB) WriteLogMessage(data services.Data) error {
	ctx := context.Background()
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)
	collection := connection.Database(m.database).Collection(collectionLog)
	_, err = collection.InsertOne(ctx, data)
	return err
}
