// Package mongodb registers the application's MongoDB client with the
// datasource container and hands out database and collection handles.
//
// An application declares at most one MongoDB client as a Definition. At
// startup every declaration is passed to Extension.Observe; the first one
// wins and any later one only marks the extension as conflicting. After
// discovery, RegisterIfAbsent records a lazy provider for the client under
// ClientKey, unless the application already registered its own client
// there. The client is built on first use and disconnected when the
// container is closed.
//
// # Basic Usage
//
//	mgr := datasource.NewManager()
//	ext := mongodb.NewExtension(nil)
//
//	ext.Observe(mongodb.Definition{Name: "test", URL: "mongodb://localhost"})
//	ext.FinalizeDiscovery()
//	if err := ext.RegisterIfAbsent(ctx, mgr); err != nil {
//	    return err
//	}
//	defer mgr.CloseAll(ctx)
//
//	producers := mongodb.NewProducers(mgr)
//	coll, err := producers.Collection(ctx, mongodb.ForCollection("myTestDb", "testCollection"))
//
// # Supplying Your Own Client
//
// Register a *mongo.Client or a *component/mongodb.Client under ClientKey
// before RegisterIfAbsent runs and the extension leaves it alone:
//
//	_ = mgr.Register(mongodb.ClientKey, datasource.InstanceProvider(myClient))
//
// Handles are never cached here. Each call asks the client again, which
// is cheap in the driver.
package mongodb
