package server

// API metadata published in the OpenAPI document.
const (
	apiTitle   = "CV Generator API"
	apiVersion = "1.0.0"
)

// exampleCSV is the request example shown in the OpenAPI document.
const exampleCSV = "section,subsection,type,content,order\nheader,nom,text,SUAN TAY,1\nheader,titre,text,Ingénieur IA,2\n"

type object = map[string]any

// openAPIDocument describes the three public operations. serverURL becomes
// the single servers entry.
func openAPIDocument(serverURL string) object {
	return object{
		"openapi": "3.1.0",
		"info": object{
			"title":       apiTitle,
			"description": "API pour générer des CV professionnels à partir de fichiers CSV",
			"version":     apiVersion,
		},
		"servers": []object{{"url": serverURL}},
		"paths": object{
			"/generate-cv":         object{"post": generateOperation()},
			"/download-cv/{cv_id}": object{"get": downloadOperation()},
			"/health":              object{"get": healthOperation()},
		},
	}
}

func generateOperation() object {
	return object{
		"summary":     "Génère un CV à partir d'un contenu CSV",
		"description": "Prend un contenu CSV en entrée et génère un CV professionnel en PDF",
		"operationId": "generateCV",
		"requestBody": object{
			"required": true,
			"content": object{
				"application/json": object{
					"schema": object{
						"type": "object",
						"properties": object{
							fieldCSVContent: object{
								"type":        "string",
								"description": "Contenu du fichier CSV avec les colonnes: section, subsection, type, content, order",
							},
						},
						"required": []string{fieldCSVContent},
					},
					"example": object{fieldCSVContent: exampleCSV},
				},
				"multipart/form-data": object{
					"schema": object{
						"type": "object",
						"properties": object{
							fieldCSVFile: object{"type": "string", "format": "binary"},
						},
						"required": []string{fieldCSVFile},
					},
				},
			},
		},
		"responses": object{
			"200": object{
				"description": msgGenerated,
				"content": object{
					"application/json": object{
						"schema": object{
							"type": "object",
							"properties": object{
								"success":      object{"type": "boolean"},
								"cv_id":        object{"type": "string", "format": "uuid"},
								"download_url": object{"type": "string", "format": "uri"},
								"message":      object{"type": "string"},
							},
						},
					},
				},
			},
			"400": object{"description": "Requête invalide", "content": errorContent()},
			"413": object{"description": "Contenu trop volumineux", "content": errorContent()},
			"500": object{"description": "Erreur serveur", "content": errorContent()},
		},
	}
}

func downloadOperation() object {
	return object{
		"summary":     "Télécharge un CV généré",
		"description": "Récupère le fichier PDF d'un CV précédemment généré",
		"operationId": "downloadCV",
		"parameters": []object{{
			"name":        "cv_id",
			"in":          "path",
			"required":    true,
			"schema":      object{"type": "string", "format": "uuid"},
			"description": "UUID du CV à télécharger",
		}},
		"responses": object{
			"200": object{
				"description": "Fichier PDF du CV",
				"content": object{
					"application/pdf": object{
						"schema": object{"type": "string", "format": "binary"},
					},
				},
			},
			"404": object{"description": msgNotFound, "content": errorContent()},
		},
	}
}

func healthOperation() object {
	return object{
		"summary":     "Vérifie l'état de l'API",
		"operationId": "healthCheck",
		"responses": object{
			"200": object{
				"description": "API en ligne",
				"content": object{
					"application/json": object{
						"schema": object{
							"type": "object",
							"properties": object{
								"status":    object{"type": "string"},
								"timestamp": object{"type": "string", "format": "date-time"},
							},
						},
					},
				},
			},
		},
	}
}

func errorContent() object {
	return object{
		"application/json": object{
			"schema": object{
				"type": "object",
				"properties": object{
					"success": object{"type": "boolean"},
					"error":   object{"type": "string"},
				},
			},
		},
	}
}
